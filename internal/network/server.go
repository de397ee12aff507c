package network

import (
	"encoding/json"
	"errors"
	"net/http"

	"gatekey/internal/failure"
)

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorBody. Unclassified errors become 500s
// without leaking their text.
func WriteError(w http.ResponseWriter, err error) {
	var classified *failure.Error
	if !errors.As(err, &classified) {
		WriteJSON(w, http.StatusInternalServerError, ErrorBody{Error: "internal error"})
		return
	}
	msg := classified.Msg
	if msg == "" {
		msg = string(classified.Kind)
	}
	WriteJSON(w, StatusFor(classified.Kind), ErrorBody{Error: msg, Kind: classified.Kind})
}

// DecodeJSON reads at most 1 MiB of request body into v.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		return failure.Wrap(err, failure.InvalidInput, "network.DecodeJSON", "malformed request body")
	}
	return nil
}
