package dto

// Deferred holds a type mismatch found while decoding a well-formed body.
// The request still reaches its service so the permission check runs first;
// the service reports the mismatch afterwards through DecodeErr.
type Deferred struct {
	field string
	err   error
}

// Defer records the first mismatched field.
func (d *Deferred) Defer(field string, err error) {
	if d.err == nil {
		d.field, d.err = field, err
	}
}

// DecodeErr is nil when every field decoded into its declared type.
func (d *Deferred) DecodeErr() error {
	return d.err
}
