package services

import (
	"context"
	"log/slog"
	"strings"

	"perfume-bot/models"
)

// RouterConfig carries the similarity thresholds and guard-phrase policy.
// Thresholds are tuned per call site; the matching engine itself knows
// nothing about them.
type RouterConfig struct {
	GuardPhrases []string

	// Minimum TokenSetRatio for extracting a brand from a message.
	BrandThreshold int
	// Minimum TokenSortRatio for resolving a product within one brand.
	BrandItemThreshold int
	// Minimum TokenSetRatio for filtering spilled items by brand.
	SpilledBrandThreshold int
	// Minimum TokenSortRatio for the brand-prioritized product search.
	SearchThreshold int
	// Minimum TokenSortRatio for treating two brand strings as the same.
	BrandEqualThreshold int
	// Minimum PartialRatio for "still about the last product" checks.
	LastProductThreshold int
}

func DefaultRouterConfig(guardPhrases []string) RouterConfig {
	return RouterConfig{
		GuardPhrases:          guardPhrases,
		BrandThreshold:        60,
		BrandItemThreshold:    60,
		SpilledBrandThreshold: 80,
		SearchThreshold:       70,
		BrandEqualThreshold:   75,
		LastProductThreshold:  85,
	}
}

// Inbound is one normalized incoming message.
type Inbound struct {
	UserID     string
	SenderName string
	Text       string
	// IsText is false for stickers, voice notes, images and the like.
	IsText bool
}

// turnCtx is the per-turn working state shared by matchers and handlers.
type turnCtx struct {
	in       Inbound
	lowerMsg string
	cleanMsg string
	lang     Lang
	session  *models.Session
	snap     *Snapshot

	brand   string
	brandOK bool

	// direct caches the catalog hit resolved by the direct-match route's
	// matcher so the handler does not rescan the catalog.
	direct *models.Product
}

// route is one (matcher, handler) pair. The first matching route produces
// the final reply; record controls whether the turn goes into history.
type route struct {
	name   string
	record bool
	match  func(t *turnCtx) bool
	handle func(ctx context.Context, t *turnCtx) (string, error)
}

// Router is the ordered intent pipeline. Each inbound message walks the
// route list top to bottom and stops at the first match.
type Router struct {
	catalog   *Catalog
	sessions  *SessionManager
	assistant Completer
	cfg       RouterConfig
	routes    []route
}

func NewRouter(catalog *Catalog, sessions *SessionManager, assistant Completer, cfg RouterConfig) *Router {
	r := &Router{
		catalog:   catalog,
		sessions:  sessions,
		assistant: assistant,
		cfg:       cfg,
	}
	r.routes = []route{
		{name: "non-text", match: r.matchNonText, handle: r.handleNonText},
		{name: "welcome", match: r.matchFirstContact, handle: r.handleFirstContact},
		{name: "manager-mode", match: r.matchManagerMode, handle: r.handleManagerMode},
		{name: "handoff", match: r.matchHandoff, handle: r.handleHandoff},
		{name: "resume", match: r.matchResume, handle: r.handleResume},
		{name: "greeting", record: true, match: r.matchGreeting, handle: r.handleGreeting},
		{name: "location", record: true, match: r.matchLocation, handle: r.handleLocation},
		{name: "delivery", record: true, match: r.matchDelivery, handle: r.handleDelivery},
		{name: "installment", record: true, match: r.matchInstallment, handle: r.handleInstallment},
		{name: "authenticity", record: true, match: r.matchAuthenticity, handle: r.handleAuthenticity},
		{name: "recommendation", record: true, match: r.matchRecommendation, handle: r.handleRecommendation},
		{name: "full-bottle", record: true, match: r.matchFullBottle, handle: r.handleFullBottle},
		{name: "price", record: true, match: r.matchPrice, handle: r.handlePrice},
		{name: "follow-up", record: true, match: r.matchFollowUp, handle: r.handleFollowUp},
		{name: "spilled", record: true, match: r.matchSpilled, handle: r.handleSpilled},
		{name: "brand", record: true, match: r.matchBrand, handle: r.handleBrand},
		{name: "purchase", record: true, match: r.matchPurchase, handle: r.handlePurchase},
		{name: "direct-match", record: true, match: r.matchDirect, handle: r.handleDirect},
		{name: "fallback", record: true, match: func(*turnCtx) bool { return true }, handle: r.handleFallback},
	}
	return r
}

// Respond routes one message and returns the reply text. An empty reply
// with a nil error means the bot stays silent (manager mode). The caller
// must hold the user's turn lock.
func (r *Router) Respond(ctx context.Context, in Inbound) (string, error) {
	session, err := r.sessions.Session(ctx, in.UserID)
	if err != nil {
		return r.failTurn(ctx, in, err)
	}

	t := &turnCtx{
		in:       in,
		lowerMsg: strings.ToLower(in.Text),
		cleanMsg: StripPunctuation(in.Text),
		lang:     DetectLanguage(in.Text),
		session:  session,
		snap:     r.catalog.Snapshot(),
	}
	t.brand, t.brandOK = r.extractBrand(t.cleanMsg, t.snap.Brands)

	for _, rt := range r.routes {
		if !rt.match(t) {
			continue
		}
		slog.Info("Intent matched", "intent", rt.name, "userID", in.UserID)

		reply, err := rt.handle(ctx, t)
		if err != nil {
			return r.failTurn(ctx, in, err)
		}
		if reply != "" && rt.record {
			if err := r.sessions.RecordTurn(ctx, in.UserID, in.Text, reply); err != nil {
				slog.Error("Failed to record turn", "userID", in.UserID, "error", err)
			}
		}
		return reply, nil
	}

	// Unreachable: the fallback route matches everything.
	return r.failTurn(ctx, in, nil)
}

// failTurn absorbs a per-turn failure: the user is handed to a manager and
// still gets a reply. No error leaves the router.
func (r *Router) failTurn(ctx context.Context, in Inbound, err error) (string, error) {
	if err != nil {
		slog.Error("Turn failed, switching to manager", "userID", in.UserID, "error", err)
	}
	if err := r.sessions.SetMode(ctx, in.UserID, models.ModeManager); err != nil {
		slog.Error("Failed to switch mode", "userID", in.UserID, "error", err)
	}
	reply := apologyHandoffReply.For(DetectLanguage(in.Text))
	if err := r.sessions.RecordTurn(ctx, in.UserID, in.Text, reply); err != nil {
		slog.Error("Failed to record turn", "userID", in.UserID, "error", err)
	}
	return reply, nil
}

// extractBrand fuzzily resolves a brand mentioned anywhere in the message,
// so "армани" or "armani" finds "Giorgio Armani".
func (r *Router) extractBrand(cleanMsg string, brands []string) (string, bool) {
	if cleanMsg == "" {
		return "", false
	}
	best, score, ok := BestMatch(cleanMsg, brands, func(q, brand string) int {
		return TokenSetRatio(q, strings.ToLower(brand))
	})
	if !ok || score < r.cfg.BrandThreshold {
		return "", false
	}
	return best, true
}

func (r *Router) containsGuardPhrase(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range r.cfg.GuardPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
