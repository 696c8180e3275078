// Package usage persists per-completion token accounting in SQLite.
//
// Every completion that reaches a terminal state is recorded as one Entry:
// which alias the client asked for, which provider and model served it, the
// upstream usage block, and whether the response was delivered as an
// emulated stream. The ledger backs the admin usage endpoint and survives
// restarts; it is not consulted on the request path.
//
// The store uses the pure-Go SQLite driver (modernc.org/sqlite), so the
// gateway builds without cgo.
//
// Example:
//
//	store, err := usage.Open("ganymede-usage.db")
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	_ = store.Record(ctx, usage.Entry{
//	    Alias:            "openai/gpt-4o",
//	    Provider:         "openai",
//	    Model:            "gpt-4o",
//	    CompletionTokens: 128,
//	    TotalTokens:      170,
//	    Status:           usage.StatusOK,
//	})
package usage
