/*
Package variables implements the typed narrative Variable Store.

A Store maps variable names to their declaration and live value. Every live
value's type matches its declared type: writes with the wrong type fail with
domain.ErrTypeMismatch instead of being coerced.

The store holds no global state and performs no locking. Playback is
single-threaded; a host that plays dialogue from several goroutines must
serialise all access to a given Store itself.

	store := variables.NewStore()
	_ = store.Register("Gold", domain.TypeInt, domain.IntValue(0), "Coins carried")
	_ = store.Set("Gold", domain.IntValue(50))
	v, _ := store.Get("Gold") // 50
*/
package variables
