package deeplink

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/WeSplit-io/WeSplit-Backend/services/address"
	"github.com/WeSplit-io/WeSplit-Backend/services/contact"
	"github.com/WeSplit-io/WeSplit-Backend/services/group"
	"github.com/WeSplit-io/WeSplit-Backend/services/guard"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/metrics"
	"github.com/WeSplit-io/WeSplit-Backend/services/paylink"
)

// Navigation targets the client understands.
const (
	RouteSend           = "send"
	RouteTransfer       = "transfer"
	RoutePaymentRequest = "payment-request"
)

// ContactAdder persists a profile-link contact save.
type ContactAdder interface {
	AddContactByAddress(ctx context.Context, ownerID int64, walletAddress string) error
}

// GroupJoiner redeems an invite code for a user.
type GroupJoiner interface {
	JoinGroup(ctx context.Context, userID int64, inviteCode string) error
}

// Navigator receives navigation intents. Fire and forget: the router relies
// on no return contract.
type Navigator interface {
	NavigateTo(routeName string, params map[string]string)
}

// RoutedAction is the dispatched outcome of one link activation.
// Deduplicated marks activations absorbed because the same mutation was
// already done or already in flight; the client shows nothing for those.
type RoutedAction struct {
	Kind         paylink.Kind        `json:"kind"`
	Link         *paylink.PaymentURI `json:"link"`
	Route        string              `json:"route,omitempty"`
	Params       map[string]string   `json:"params,omitempty"`
	Deduplicated bool                `json:"deduplicated,omitempty"`
	Warning      string              `json:"warning,omitempty"`
}

// Router turns inbound links into exactly one dispatched action per
// activation. Mutating variants (profile, join) run under the guard; the
// navigation variants are read-only intents and do not.
type Router struct {
	parser   *paylink.Parser
	contacts ContactAdder
	groups   GroupJoiner
	nav      Navigator
	guards   *guard.ActionGuard
	logger   *logging.Logger
}

// NewRouter wires the router. guards must be an instance dedicated to link
// activations: the contact and group collaborators hold their own guard on
// the same keys, and a shared instance would see the nested acquire as a
// duplicate and drop the first activation.
func NewRouter(
	parser *paylink.Parser,
	contacts ContactAdder,
	groups GroupJoiner,
	nav Navigator,
	guards *guard.ActionGuard,
	logger *logging.Logger,
) *Router {
	return &Router{
		parser:   parser,
		contacts: contacts,
		groups:   groups,
		nav:      nav,
		guards:   guards,
		logger:   logger,
	}
}

// Route parses uri and dispatches it for userID (0 = unauthenticated).
// Every outcome is either a *RoutedAction or a *Rejection; collaborator
// errors never escape raw.
func (r *Router) Route(ctx context.Context, uri string, userID int64) (*RoutedAction, error) {
	parsed, err := r.parser.Parse(uri)
	if err != nil {
		if fallback := r.rawAddressFallback(uri, err); fallback != nil {
			parsed = fallback
		} else {
			metrics.RecordLinkResolution("invalid", "rejected")
			return nil, rejectionFromParse(err)
		}
	}

	switch parsed.Kind {
	case paylink.KindProfile:
		return r.routeProfile(ctx, parsed, userID)
	case paylink.KindJoin:
		return r.routeJoin(ctx, parsed, userID)
	case paylink.KindSend, paylink.KindTransfer, paylink.KindPaymentRequest:
		return r.routeNavigation(parsed)
	default:
		metrics.RecordLinkResolution("invalid", "rejected")
		return nil, NewRejection(CategoryParse, "unrecognized link action")
	}
}

// rawAddressFallback lets a bare wallet address stand in for a send link.
// It only applies when no recognized scheme is present: a link carrying the
// app scheme always wins, however mangled its payload.
func (r *Router) rawAddressFallback(uri string, parseErr error) *paylink.PaymentURI {
	if !errors.Is(parseErr, paylink.ErrUnrecognizedScheme) || r.parser.IsAppLink(uri) {
		return nil
	}

	candidate := strings.TrimSpace(uri)
	if !address.IsUsable(candidate) {
		return nil
	}

	return &paylink.PaymentURI{Kind: paylink.KindSend, RecipientAddress: candidate}
}

func (r *Router) routeProfile(ctx context.Context, link *paylink.PaymentURI, userID int64) (*RoutedAction, error) {
	if userID == 0 {
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryAuth, "sign in to save this contact")
	}

	key := guard.ContactAddKey(userID, link.WalletAddress)
	err := r.guards.Do(key, func() error {
		return r.contacts.AddContactByAddress(ctx, userID, link.WalletAddress)
	})

	switch {
	case err == nil:
		metrics.RecordLinkResolution(string(link.Kind), "dispatched")
		return &RoutedAction{Kind: link.Kind, Link: link}, nil

	case errors.Is(err, guard.ErrDuplicateAction), errors.Is(err, contact.ErrContactExists):
		// Benign double activation, or the contact is already saved.
		metrics.RecordLinkResolution(string(link.Kind), "deduplicated")
		return &RoutedAction{Kind: link.Kind, Link: link, Deduplicated: true}, nil

	case errors.Is(err, contact.ErrBadAddress):
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryValidation, err.Error())

	default:
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		r.logger.Error(fmt.Sprintf("profile link for user %d failed: %v", userID, err))
		return nil, newCollaboratorRejection("could not save this contact, please try again", err)
	}
}

func (r *Router) routeJoin(ctx context.Context, link *paylink.PaymentURI, userID int64) (*RoutedAction, error) {
	if userID == 0 {
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryAuth, "sign in to join this group")
	}

	key := guard.GroupJoinKey(userID, link.InviteID)
	err := r.guards.Do(key, func() error {
		return r.groups.JoinGroup(ctx, userID, link.InviteID)
	})

	switch {
	case err == nil:
		metrics.RecordLinkResolution(string(link.Kind), "dispatched")
		return &RoutedAction{Kind: link.Kind, Link: link}, nil

	case errors.Is(err, guard.ErrDuplicateAction):
		metrics.RecordLinkResolution(string(link.Kind), "deduplicated")
		return &RoutedAction{Kind: link.Kind, Link: link, Deduplicated: true}, nil

	case errors.Is(err, group.ErrBadInviteCode), errors.Is(err, group.ErrInviteNotFound):
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryValidation, "invite code is not valid")

	case errors.Is(err, group.ErrInviteExpired):
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryValidation, "this invite has expired")

	default:
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		r.logger.Error(fmt.Sprintf("join link for user %d failed: %v", userID, err))
		return nil, newCollaboratorRejection("could not join the group, please try again", err)
	}
}

// routeNavigation handles the read-only variants. The recipient is
// re-validated here: parsing already rejects outright malformed addresses,
// but the raw-address fallback and unknown-status pass-through both land in
// this path.
func (r *Router) routeNavigation(link *paylink.PaymentURI) (*RoutedAction, error) {
	cls := address.Classify(link.RecipientAddress)
	if cls.Status == address.StatusInvalid || cls.Status == address.StatusEmpty {
		metrics.RecordLinkResolution(string(link.Kind), "rejected")
		return nil, NewRejection(CategoryValidation, "invalid recipient address")
	}

	action := &RoutedAction{
		Kind:   link.Kind,
		Link:   link,
		Route:  routeFor(link.Kind),
		Params: navigationParams(link),
	}
	if cls.Status == address.StatusUnknown {
		action.Warning = "recipient address could not be verified, double-check before sending"
	}

	if r.nav != nil {
		r.nav.NavigateTo(action.Route, action.Params)
	}

	metrics.RecordLinkResolution(string(link.Kind), "dispatched")
	return action, nil
}

func routeFor(kind paylink.Kind) string {
	switch kind {
	case paylink.KindTransfer:
		return RouteTransfer
	case paylink.KindPaymentRequest:
		return RoutePaymentRequest
	default:
		return RouteSend
	}
}

func navigationParams(link *paylink.PaymentURI) map[string]string {
	params := map[string]string{
		"recipient": link.RecipientAddress,
	}
	if link.Label != "" {
		params["label"] = link.Label
	}
	if link.Message != "" {
		params["message"] = link.Message
	}
	if link.CurrencyCode != "" {
		params["currency"] = link.CurrencyCode
	}
	if link.Amount != nil {
		params["amount"] = link.Amount.String()
	}
	return params
}

// rejectionFromParse splits content problems in an otherwise well-formed
// link (bad recipient, bad amount) from links that could not be read at
// all, so the api can message them differently.
func rejectionFromParse(err error) *Rejection {
	var pe *paylink.ParseError
	if !errors.As(err, &pe) {
		return NewRejection(CategoryParse, "link could not be read")
	}

	switch {
	case errors.Is(err, paylink.ErrBadRecipient), errors.Is(err, paylink.ErrBadAmount), errors.Is(err, paylink.ErrUnsupportedToken):
		return NewRejection(CategoryValidation, pe.Reason)
	default:
		return NewRejection(CategoryParse, pe.Reason)
	}
}
