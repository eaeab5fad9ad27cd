/*
Package client provides a typed Go client for the todo HTTP API served by package api.

Each method maps to one route and performs exactly one HTTP request:

	c, _ := client.New("http://localhost:8787")
	t, err := c.Create(ctx, todo.Draft{ID: "1", Title: "Buy milk"})
	t, err = c.Update(ctx, "1", todo.Patch{Completed: &done})
	if client.IsNotFound(err) {
		// ...
	}

Responses with a status outside of 2xx are returned as *HTTPError. Network errors are
returned unchanged.
*/
package client
