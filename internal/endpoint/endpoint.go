// ABOUTME: Endpoint definition and the handler contract exposed to device programs
// ABOUTME: A handler returns the response text or hijacks the connection and writes it itself

package endpoint

// Handler runs a matched endpoint. args are the path segments after the
// route name, verbatim and in order. The returned string is written to the
// client unless the handler hijacked the connection through c.Hijack.
type Handler interface {
	Invoke(c *Context, args []string) (string, error)
}

// ActionFunc adapts an ordinary function to Handler.
type ActionFunc func(c *Context, args []string) (string, error)

func (f ActionFunc) Invoke(c *Context, args []string) (string, error) {
	return f(c, args)
}

// Endpoint is a named route. It is never mutated after registration.
type Endpoint struct {
	Name        string
	Description string
	Handler     Handler

	// ManualSocket declares that the handler writes to the connection
	// itself. Informational only: the dispatcher relies on Hijack.
	ManualSocket bool
}

// New builds an Endpoint from a plain function.
func New(name, description string, manual bool, fn ActionFunc) Endpoint {
	return Endpoint{
		Name:         name,
		Description:  description,
		Handler:      fn,
		ManualSocket: manual,
	}
}
