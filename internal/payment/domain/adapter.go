package domain

// PayloadAdapter recognises one callback layout and turns it into a PaymentEvent.
// Interpret returns ErrEventIgnored for callbacks that are not a completed
// payment, and ErrMalformedPayload when required fields are missing.
type PayloadAdapter interface {
	Name() Shape
	Match(env *Envelope) bool
	Interpret(env *Envelope) (*PaymentEvent, error)
}
