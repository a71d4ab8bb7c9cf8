package paylink

import (
	"net/url"
	"strings"

	"github.com/WeSplit-io/WeSplit-Backend/services/address"
	"github.com/WeSplit-io/WeSplit-Backend/services/currency"
	"github.com/shopspring/decimal"
)

// DefaultScheme is the app deep-link scheme registered by the mobile client.
const DefaultScheme = "wesplit"

// SolanaPayScheme is the standardized payment-request scheme carried by
// merchant QR codes.
const SolanaPayScheme = "solana"

type Kind string

const (
	KindProfile        Kind = "profile"
	KindSend           Kind = "send"
	KindTransfer       Kind = "transfer"
	KindJoin           Kind = "join"
	KindPaymentRequest Kind = "payment_request"
)

// PaymentURI is the parsed form of an inbound link. Kind selects the variant;
// only the fields belonging to that variant are populated.
type PaymentURI struct {
	Kind             Kind             `json:"kind"`
	WalletAddress    string           `json:"wallet_address,omitempty"`    // profile
	RecipientAddress string           `json:"recipient_address,omitempty"` // send, transfer, payment_request
	InviteID         string           `json:"invite_id,omitempty"`         // join
	Amount           *decimal.Decimal `json:"amount,omitempty"`            // payment_request, optional
	CurrencyCode     string           `json:"currency_code,omitempty"`     // payment_request
	Label            string           `json:"label,omitempty"`
	Message          string           `json:"message,omitempty"`
}

type Parser struct {
	appScheme string
}

func NewParser(appScheme string) *Parser {
	if appScheme == "" {
		appScheme = DefaultScheme
	}
	return &Parser{appScheme: appScheme}
}

// Parse turns a link into exactly one PaymentURI variant or a *ParseError
// with a user-displayable reason. It never returns a partially-filled
// variant and has no side effects, so parsing the same string twice yields
// structurally equal results.
func (p *Parser) Parse(uri string) (*PaymentURI, error) {
	trimmed := strings.TrimSpace(uri)
	if trimmed == "" {
		return nil, ErrEmptyLink
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, ErrMalformedLink
	}

	switch strings.ToLower(u.Scheme) {
	case p.appScheme:
		return p.parseAppLink(u)
	case SolanaPayScheme:
		return p.parsePaymentRequest(u)
	default:
		return nil, ErrUnrecognizedScheme
	}
}

// IsAppLink reports whether the input carries the app scheme prefix. The
// prefix always takes precedence: callers may only fall back to raw-address
// handling when it is absent.
func (p *Parser) IsAppLink(uri string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(uri)), p.appScheme+"://")
}

// parseAppLink handles wesplit://<action>/<segments>. With the scheme's
// double slash the action lands in the URL host and the arguments in the
// path.
func (p *Parser) parseAppLink(u *url.URL) (*PaymentURI, error) {
	action := strings.ToLower(u.Host)
	segments := splitPath(u.Path)

	switch action {
	case "profile":
		addr, err := requireAddressSegment(segments, 0)
		if err != nil {
			return nil, err
		}
		if len(segments) > 1 {
			return nil, ErrMalformedLink
		}
		return &PaymentURI{Kind: KindProfile, WalletAddress: addr}, nil

	case "send", "transfer":
		addr, err := requireAddressSegment(segments, 0)
		if err != nil {
			return nil, err
		}

		var label string
		switch len(segments) {
		case 1:
		case 2:
			label = segments[1]
		default:
			return nil, ErrMalformedLink
		}

		kind := KindSend
		if action == "transfer" {
			kind = KindTransfer
		}
		return &PaymentURI{Kind: kind, RecipientAddress: addr, Label: label}, nil

	case "join":
		if len(segments) != 1 || !isPlausibleInviteCode(segments[0]) {
			return nil, ErrBadInvite
		}
		return &PaymentURI{Kind: KindJoin, InviteID: segments[0]}, nil

	default:
		return nil, ErrUnrecognizedAction
	}
}

// parsePaymentRequest handles solana:<recipient>?amount=&spl-token=&label=&message=.
// The recipient rides in the opaque part of the URL; a tolerated double-slash
// form puts it in the host.
func (p *Parser) parsePaymentRequest(u *url.URL) (*PaymentURI, error) {
	recipient := u.Opaque
	if recipient == "" {
		recipient = u.Host
	}

	c := address.Classify(recipient)
	if c.Status == address.StatusEmpty || c.Status == address.StatusInvalid {
		return nil, ErrBadRecipient
	}

	q := u.Query()
	out := &PaymentURI{
		Kind:             KindPaymentRequest,
		RecipientAddress: recipient,
		CurrencyCode:     currency.DefaultCurrency,
		Label:            q.Get("label"),
		Message:          q.Get("message"),
	}

	if raw := q.Get("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil || !amount.IsPositive() {
			return nil, ErrBadAmount
		}
		out.Amount = &amount
	}

	if mint := q.Get("spl-token"); mint != "" {
		token, ok := currency.TokenByMint(mint)
		if !ok {
			return nil, ErrUnsupportedToken
		}
		out.CurrencyCode = token.Symbol
	}

	return out, nil
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// requireAddressSegment validates the positional address argument. Addresses
// that classify as unknown pass through so the router can attach a warning
// instead of blocking.
func requireAddressSegment(segments []string, pos int) (string, error) {
	if len(segments) <= pos || segments[pos] == "" {
		return "", ErrMissingAddress
	}

	c := address.Classify(segments[pos])
	if c.Status == address.StatusEmpty {
		return "", ErrMissingAddress
	}
	if c.Status == address.StatusInvalid {
		return "", ErrBadRecipient
	}
	return segments[pos], nil
}

// isPlausibleInviteCode checks the alphabet hashid invite codes are minted
// from. Whether the code decodes to a live invite is the group service's
// call, not the parser's.
func isPlausibleInviteCode(code string) bool {
	if code == "" {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
