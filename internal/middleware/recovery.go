// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recoverer turns a panic in a downstream handler into a logged 500. The
// response carries the request ID so a client report can be matched to the
// stack trace. http.ErrAbortHandler is re-raised so net/http can abort the
// connection as the handler asked.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			id := GetRequestID(r.Context())
			slog.Error("panic recovered",
				"error", rec,
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()),
			)

			msg := "Internal Server Error"
			if id != "" {
				msg += " (request " + id + ")"
			}
			http.Error(w, msg, http.StatusInternalServerError)
		}()

		next.ServeHTTP(w, r)
	})
}
