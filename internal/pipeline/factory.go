package pipeline

// #region imports
import (
	"context"
	"fmt"
	"net/url"

	"github.com/guestflow/ragcore/internal/dispatch"
)

// #endregion

// #region credential-source

// CredentialSource fetches a tenant's stored provider secrets.
type CredentialSource interface {
	Credential(ctx context.Context, tenantID, provider, key string) (string, error)
}

// #endregion credential-source

// #region factory

// ClientFactory builds provider clients from tenant credentials. It is
// the production CompleterFactory.
type ClientFactory struct {
	creds CredentialSource
}

// NewClientFactory wraps a credential source.
func NewClientFactory(creds CredentialSource) *ClientFactory {
	return &ClientFactory{creds: creds}
}

// Completer returns the client for one provider. Yandex has no proxy
// support; the other providers route through the tenant proxy when one
// is configured.
func (f *ClientFactory) Completer(ctx context.Context, tenantID, provider string, proxy *url.URL) (dispatch.Completer, error) {
	switch provider {
	case "yandex":
		apiKey, err := f.creds.Credential(ctx, tenantID, "yandex", "api_key")
		if err != nil {
			return nil, err
		}
		folderID, err := f.creds.Credential(ctx, tenantID, "yandex", "folder_id")
		if err != nil {
			return nil, err
		}
		return dispatch.NewYandexClient(apiKey, folderID), nil

	case "openrouter":
		apiKey, err := f.creds.Credential(ctx, tenantID, "openrouter", "api_key")
		if err != nil {
			return nil, err
		}
		return dispatch.NewOpenAIClient("openrouter", dispatch.BaseOpenRouter, apiKey, proxy), nil

	case "deepseek":
		apiKey, err := f.creds.Credential(ctx, tenantID, "deepseek", "api_key")
		if err != nil {
			return nil, err
		}
		return dispatch.NewOpenAIClient("deepseek", dispatch.BaseDeepSeek, apiKey, proxy), nil

	case "proxyapi":
		apiKey, err := f.creds.Credential(ctx, tenantID, "proxyapi", "api_key")
		if err != nil {
			return nil, err
		}
		return dispatch.NewOpenAIClient("proxyapi", dispatch.BaseProxyAPI, apiKey, proxy), nil
	}
	return nil, fmt.Errorf("unknown provider %q", provider)
}

// #endregion factory
