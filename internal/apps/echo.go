package apps

import (
	"strings"

	"github.com/harper/netcmd/internal/endpoint"
)

// Echo answers with its arguments joined by commas.
type Echo struct{}

func (Echo) Initialize() error { return nil }

func (Echo) Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		endpoint.New("echo", "Returns the URL arguments as a comma separated list", false, echo),
	}
}

func echo(_ *endpoint.Context, args []string) (string, error) {
	return strings.Join(args, ","), nil
}
