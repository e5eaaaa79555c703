package apiclient

import (
	"time"

	v1 "github.com/mtgmine/mtgmine/apis/v1"
)

// ConfigFromSpec converts the job file's client settings. baseURL is used
// when the job file leaves base_url empty.
func ConfigFromSpec(spec v1.ClientSpec, baseURL string) Config {
	cfg := Config{
		BaseURL:  spec.BaseURL,
		Headers:  spec.Headers,
		Insecure: spec.Insecure,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = baseURL
	}

	if spec.Timeout != nil {
		cfg.Timeout = time.Duration(*spec.Timeout) * time.Second
	}

	if spec.Auth != nil {
		cfg.Auth = &AuthConfig{}
		if spec.Auth.Bearer != nil {
			cfg.Auth.Bearer = *spec.Auth.Bearer
		}
		if spec.Auth.Basic != nil {
			cfg.Auth.Basic = &BasicAuthConfig{
				Username: spec.Auth.Basic.Username,
				Password: spec.Auth.Basic.Password,
				Encoded:  spec.Auth.Basic.Encoded,
			}
		}
	}

	return cfg
}
