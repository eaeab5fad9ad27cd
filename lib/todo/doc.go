// Package todo implements the todo operations on top of a store.IStore.
//
// Each todo is stored as JSON under its id. The service keeps no state of its
// own, so concurrent updates of the same id are last-writer-wins. Records with
// the deleted flag set are treated as absent by List and Random.
//
//	s := lstore.NewLocalStore(func() db.KVDB { return maple.NewMapleDB(nil) })
//	svc := todo.NewService(s)
//	t, err := svc.Create(todo.Draft{ID: "1", Title: "Buy milk"})
package todo
