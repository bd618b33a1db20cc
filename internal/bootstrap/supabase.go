package bootstrap

import (
	"fmt"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/supabase-go"

	"github.com/collabhub/collabhub-backend/config"
)

// NewSupabaseClient builds the service-role client used for the REST table
// and object storage. It returns nil when Supabase is not configured.
func NewSupabaseClient(cfg config.SupabaseConfig) (*supabase.Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return client, nil
}

// NewGoTrueClient builds an Auth client keyed with the public key so token
// lookups run with end-user privileges.
func NewGoTrueClient(cfg *config.Config) gotrue.Client {
	return gotrue.New(cfg.Supabase.URL, cfg.SupabaseAuthKey()).
		WithCustomGoTrueURL(cfg.Supabase.URL + "/auth/v1")
}
