// Package middleware wraps a query log with privacy controls applied before
// entries reach storage.
package middleware

import "github.com/aretw0/revitgen/pkg/ports"

// Middleware allows wrapping a QueryLog to add behavior.
type Middleware func(ports.QueryLog) ports.QueryLog

// Chain wraps log so that mws[0] sees an entry first.
func Chain(log ports.QueryLog, mws ...Middleware) ports.QueryLog {
	for i := len(mws) - 1; i >= 0; i-- {
		log = mws[i](log)
	}
	return log
}
