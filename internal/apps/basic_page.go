package apps

import "github.com/harper/netcmd/internal/endpoint"

// BasicPage serves a page that embeds the live camera stream.
type BasicPage struct{}

func (BasicPage) Initialize() error { return nil }

func (BasicPage) Endpoints() []endpoint.Endpoint {
	return []endpoint.Endpoint{
		endpoint.New("test.html", "Page showing the live camera stream", false, testPage),
	}
}

const testPageHTML = "<html><body><img height=120 width=160 src='" + CameraRoute + "/mjpeg'/></body></html>"

func testPage(*endpoint.Context, []string) (string, error) {
	return testPageHTML, nil
}
