// Package api serves the todo service over HTTP.
//
// Routes:
//
//	GET    /             random todo, or the text "No todos found" / "Todo not found"
//	GET    /todos        all todos
//	POST   /todos        create (or replace) a todo
//	POST   /todos/seed   overwrite the todos 1 to 5 with demo data
//	GET    /todos/{id}   single todo, 404 if missing
//	PUT    /todos/{id}   merge the body into a todo, 404 if missing
//	DELETE /todos/{id}   delete a todo
//	GET    /metrics      Prometheus metrics
//
// CORS is enabled for /todos and everything below it. Request bodies that are
// not valid JSON are answered with 400, store failures with 500.
package api
