package http

import "net/http"

// headerAuthTransport injects a credential header into every outbound request.
// An empty value leaves the request untouched.
type headerAuthTransport struct {
	header    string
	value     string
	transport http.RoundTripper
}

func (t *headerAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.value == "" {
		return t.transport.RoundTrip(req)
	}

	reqCopy := req.Clone(req.Context())
	reqCopy.Header.Set(t.header, t.value)

	return t.transport.RoundTrip(reqCopy)
}

func withHeaderAuth(header, value string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerAuthTransport{
			header:    header,
			value:     value,
			transport: rt,
		}
	})
}

// WithAuthToken sends "Authorization: Bearer <token>".
func WithAuthToken(token string) HttpOpts {
	if token == "" {
		return withHeaderAuth("Authorization", "")
	}
	return withHeaderAuth("Authorization", "Bearer "+token)
}

// WithAPIKey sends the key in the "api-key" header (Azure OpenAI style).
func WithAPIKey(key string) HttpOpts {
	return withHeaderAuth("api-key", key)
}

// WithElasticAPIKey sends "Authorization: ApiKey <key>".
func WithElasticAPIKey(key string) HttpOpts {
	if key == "" {
		return withHeaderAuth("Authorization", "")
	}
	return withHeaderAuth("Authorization", "ApiKey "+key)
}
