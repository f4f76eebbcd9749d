package togetapi

import (
	"encoding/json"
	"testing"
)

func TestListDecodesAPIPayload(t *testing.T) {
	raw := `{"label":"Groceries","items":[{"item":"Milk","amount":2,"collected":false},{"item":"Eggs","amount":12,"collected":true}]}`
	var l List
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if l.Label != "Groceries" || len(l.Items) != 2 {
		t.Fatalf("List = %+v, want Groceries with 2 items", l)
	}
	if !l.Items[1].Collected || l.Items[1].Amount != 12 {
		t.Fatalf("Items[1] = %+v, want collected Eggs x12", l.Items[1])
	}
	if l.Find("Eggs") != 1 || l.Find("Bread") != -1 {
		t.Fatalf("Find mismatch: Eggs=%d Bread=%d", l.Find("Eggs"), l.Find("Bread"))
	}
	if (*List)(nil).Find("Eggs") != -1 {
		t.Fatal("Find on nil list should return -1")
	}
}

func TestGroupDecodesAPIPayload(t *testing.T) {
	raw := `{"label":"Home","lists":[{"id":"gkI3qzYzX","label":"Groceries"}]}`
	var g Group
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if g.Label != "Home" || len(g.Lists) != 1 || g.Lists[0].ID != "gkI3qzYzX" {
		t.Fatalf("Group = %+v", g)
	}
}
