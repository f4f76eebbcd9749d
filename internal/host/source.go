package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/togetter/internal/togetapi"
)

var (
	// ErrListNotFound reports a list id the source does not know.
	ErrListNotFound = errors.New("list not found")
	// ErrItemNotFound reports an item name missing from its list.
	ErrItemNotFound = errors.New("item not found")
)

// Source is where the host reads lists from and writes toggles to.
type Source interface {
	Group(ctx context.Context) (*togetapi.Group, error)
	List(ctx context.Context, listID string) (*togetapi.List, error)
	SetCollected(ctx context.Context, listID, item string, collected bool) error
}

// APISource serves one group of the to-get web API.
type APISource struct {
	api     togetapi.Fetcher
	groupID string
}

var _ Source = (*APISource)(nil)

// NewAPISource returns a Source for groupID backed by api.
func NewAPISource(api togetapi.Fetcher, groupID string) *APISource {
	return &APISource{api: api, groupID: groupID}
}

func (s *APISource) Group(ctx context.Context) (*togetapi.Group, error) {
	g, err := s.api.FetchGroup(ctx, s.groupID)
	if err != nil {
		return nil, fmt.Errorf("fetch group %s: %w", s.groupID, err)
	}
	return g, nil
}

func (s *APISource) List(ctx context.Context, listID string) (*togetapi.List, error) {
	l, err := s.api.FetchList(ctx, s.groupID, listID)
	if errors.Is(err, togetapi.ErrNotFound) {
		return nil, fmt.Errorf("fetch list %s: %w: %w", listID, ErrListNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch list %s: %w", listID, err)
	}
	return l, nil
}

func (s *APISource) SetCollected(ctx context.Context, listID, item string, collected bool) error {
	if err := s.api.UpdateItem(ctx, s.groupID, listID, item, collected); err != nil {
		return fmt.Errorf("update %q in list %s: %w", item, listID, err)
	}
	return nil
}
