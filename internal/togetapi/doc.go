// Package togetapi provides an HTTP client for the to-get shopping list API.
//
// # Endpoints
//
//	GET  /api/{group}/                       group label and its lists
//	GET  /api/{group}/lists/{list}/          list label and its items
//	POST /api/{group}/lists/{list}/?action=update&item=NAME&collected=BOOL
//
// Responses are JSON and decode into Group and List. Status codes of 400 and
// above are returned as errors; the body is not inspected.
//
// # Usage
//
//	client, err := togetapi.NewClient("http://to-get.appspot.com")
//	if err != nil {
//		return err
//	}
//	list, err := client.FetchList(ctx, groupID, listID)
package togetapi
