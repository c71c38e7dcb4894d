package banking

import (
	"context"
	"net/http"
	"strings"
	"time"

	"bookinghub/utils"

	"github.com/plaid/plaid-go/v20/plaid"
)

// LinkToken is the short-lived token the client opens the bank link flow with.
type LinkToken struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
}

// Exchange is the durable result of exchanging a public token.
type Exchange struct {
	ItemID      string
	AccessToken string
}

// Linker is the banking vendor.
type Linker interface {
	CreateLinkToken(ctx context.Context, userID string) (*LinkToken, error)
	ExchangePublicToken(ctx context.Context, publicToken string) (*Exchange, error)
}

// PlaidLinker talks to Plaid.
type PlaidLinker struct {
	api         *plaid.APIClient
	clientName  string
	countryCode plaid.CountryCode
}

// NewPlaidLinker builds a Plaid client. env is "sandbox" or "production".
func NewPlaidLinker(clientID, secret, env, clientName, countryCode string) (*PlaidLinker, error) {
	if clientID == "" || secret == "" {
		return nil, utils.NotConfigured("banking service")
	}
	cfg := plaid.NewConfiguration()
	cfg.AddDefaultHeader("PLAID-CLIENT-ID", clientID)
	cfg.AddDefaultHeader("PLAID-SECRET", secret)
	if strings.EqualFold(env, "production") {
		cfg.UseEnvironment(plaid.Production)
	} else {
		cfg.UseEnvironment(plaid.Sandbox)
	}
	return &PlaidLinker{
		api:         plaid.NewAPIClient(cfg),
		clientName:  clientName,
		countryCode: plaid.CountryCode(strings.ToUpper(countryCode)),
	}, nil
}

func (l *PlaidLinker) CreateLinkToken(ctx context.Context, userID string) (*LinkToken, error) {
	user := plaid.LinkTokenCreateRequestUser{ClientUserId: userID}
	req := plaid.NewLinkTokenCreateRequest(l.clientName, "en", []plaid.CountryCode{l.countryCode}, user)
	req.SetProducts([]plaid.Products{plaid.PRODUCTS_AUTH, plaid.PRODUCTS_TRANSACTIONS})

	resp, httpResp, err := l.api.PlaidApi.LinkTokenCreate(ctx).LinkTokenCreateRequest(*req).Execute()
	if err != nil {
		return nil, plaidError(err, httpResp)
	}
	return &LinkToken{LinkToken: resp.GetLinkToken(), Expiration: resp.GetExpiration()}, nil
}

func (l *PlaidLinker) ExchangePublicToken(ctx context.Context, publicToken string) (*Exchange, error) {
	req := plaid.NewItemPublicTokenExchangeRequest(publicToken)
	resp, httpResp, err := l.api.PlaidApi.ItemPublicTokenExchange(ctx).ItemPublicTokenExchangeRequest(*req).Execute()
	if err != nil {
		return nil, plaidError(err, httpResp)
	}
	return &Exchange{ItemID: resp.GetItemId(), AccessToken: resp.GetAccessToken()}, nil
}

func plaidError(err error, resp *http.Response) error {
	ve := &utils.VendorError{Vendor: "plaid", Message: err.Error()}
	if resp != nil {
		ve.Status = resp.StatusCode
	}
	if pe, convErr := plaid.ToPlaidError(err); convErr == nil {
		ve.Message = pe.ErrorMessage
		if pe.ErrorCode != "" {
			ve.Message += " (" + pe.ErrorCode + ")"
		}
	}
	return ve
}
