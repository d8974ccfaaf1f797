package services

import (
	"context"
	"strings"

	"perfume-bot/models"
)

var (
	handoffKeywords = []string{"переключить", "менеджер", "связаться с менеджером"}
	resumeKeywords  = []string{"завершить разговор", "бот"}

	greetingRU = []string{"привет", "здравствуйте", "добрый день", "добрый вечер", "салам"}
	greetingKZ = []string{"сәлем", "қайырлы күн", "қайырлы кеш", "салеметсизбе", "салеметсиз бе", "салем"}

	locationKeywords = []string{
		"адрес", "где вы", "местоположение", "где находится", "как добраться",
		"мекенжай", "қай жерде", "орналасқан", "қайда",
	}
	deliveryKeywords    = []string{"доставка", "жеткізу"}
	installmentKeywords = []string{
		"рассрочка", "оплата частями", "kaspi red", "kaspi рассрочка",
		"можно в рассрочку", "можно ли оплатить частями",
	}
	authenticityKeywords = []string{
		"оригинал", "копия", "реплика", "подделка", "настоящий",
		"сертифицированный", "оригинальная продукция", "реплика или оригинал",
	}
	recommendationKeywords = []string{
		"подобрать", "помогите выбрать", "посоветуйте", "подскажите",
		"рекомендовать", "лучший аромат", "что выбрать", "совет",
	}
	fullBottleKeywords = []string{"полный объем", "флакон", "оригинал", "бутылка", "толық көлем", "құты"}
	priceKeywords      = []string{"цена", "сколько стоит", "стоимость", "по чем", "қанша тұрады"}
	followUpKeywords   = []string{"цена", "стоимость", "где купить", "наличие", "доступно", "сколько стоит"}
	spilledKeywords    = []string{"разлив", "разливные", "құйма"}
	spilledExtKeywords = []string{"разлив", "разливные", "құйма", "sample", "отливант", "1 мл", "1ml", "decant"}
	listKeywords       = []string{"все", "показать", "список", "какие", "барлығы", "қандай"}
	purchaseKeywords   = []string{
		"купить", "заказать", "оформить заказ", "купить сейчас", "хочу купить",
		"закажу", "сатып алу", "тапсырыс беру",
	}
)

// 1. Non-text input: hand straight to a manager, nothing to parse.

func (r *Router) matchNonText(t *turnCtx) bool {
	return !t.in.IsText || strings.TrimSpace(t.in.Text) == ""
}

func (r *Router) handleNonText(ctx context.Context, t *turnCtx) (string, error) {
	if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeManager); err != nil {
		return "", err
	}
	return nonTextReply.For(t.lang), nil
}

// 2. First-ever message: the one-time welcome, nothing else this turn.

func (r *Router) matchFirstContact(t *turnCtx) bool {
	return !t.session.Welcomed
}

func (r *Router) handleFirstContact(ctx context.Context, t *turnCtx) (string, error) {
	if err := r.sessions.MarkWelcomed(ctx, t.in.UserID); err != nil {
		return "", err
	}
	return welcomeReply(t.in.SenderName).For(t.lang), nil
}

// 3. Manager mode: stay silent unless the user explicitly resumes the bot.

func (r *Router) matchManagerMode(t *turnCtx) bool {
	return t.session.Mode == models.ModeManager
}

func (r *Router) handleManagerMode(ctx context.Context, t *turnCtx) (string, error) {
	if !wantsResume(t.lowerMsg) {
		return "", nil
	}
	if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeBot); err != nil {
		return "", err
	}
	return resumeConfirmReply.For(t.lang), nil
}

// 4. Handoff request.

func (r *Router) matchHandoff(t *turnCtx) bool {
	if containsAny(t.lowerMsg, handoffKeywords) {
		return true
	}
	return strings.Contains(t.lowerMsg, "менеджер") && strings.Contains(t.lowerMsg, "байланыс")
}

func (r *Router) handleHandoff(ctx context.Context, t *turnCtx) (string, error) {
	if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeManager); err != nil {
		return "", err
	}
	return handoffConfirmReply.For(t.lang), nil
}

// 4b. Resume keyword while already in bot mode just reconfirms.

func (r *Router) matchResume(t *turnCtx) bool {
	return wantsResume(t.lowerMsg)
}

func (r *Router) handleResume(ctx context.Context, t *turnCtx) (string, error) {
	if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeBot); err != nil {
		return "", err
	}
	return resumeConfirmReply.For(t.lang), nil
}

func wantsResume(lowerMsg string) bool {
	if containsAny(lowerMsg, resumeKeywords) {
		return true
	}
	return strings.Contains(lowerMsg, "әңгіме") && strings.Contains(lowerMsg, "аяқтау")
}

// 5. Greeting in the detected language.

func (r *Router) matchGreeting(t *turnCtx) bool {
	return (containsAny(t.lowerMsg, greetingRU) && t.lang == LangRU) ||
		(containsAny(t.lowerMsg, greetingKZ) && t.lang == LangKZ)
}

func (r *Router) handleGreeting(_ context.Context, t *turnCtx) (string, error) {
	return welcomeReply(t.in.SenderName).For(t.lang), nil
}

// 6-9. Canned policy replies.

func (r *Router) matchLocation(t *turnCtx) bool { return containsAny(t.lowerMsg, locationKeywords) }

func (r *Router) handleLocation(_ context.Context, t *turnCtx) (string, error) {
	return addressReply.For(t.lang), nil
}

func (r *Router) matchDelivery(t *turnCtx) bool { return containsAny(t.lowerMsg, deliveryKeywords) }

func (r *Router) handleDelivery(_ context.Context, t *turnCtx) (string, error) {
	return deliveryReply.For(t.lang), nil
}

func (r *Router) matchInstallment(t *turnCtx) bool {
	return containsAny(t.lowerMsg, installmentKeywords)
}

func (r *Router) handleInstallment(_ context.Context, t *turnCtx) (string, error) {
	return installmentReply.For(t.lang), nil
}

func (r *Router) matchAuthenticity(t *turnCtx) bool {
	return containsAny(t.lowerMsg, authenticityKeywords)
}

func (r *Router) handleAuthenticity(_ context.Context, t *turnCtx) (string, error) {
	return authenticityReply.For(t.lang), nil
}

// 10. Open-ended consultation, answered by the model but grounded in the
// catalog.

func (r *Router) matchRecommendation(t *turnCtx) bool {
	return containsAny(t.lowerMsg, recommendationKeywords)
}

func (r *Router) handleRecommendation(ctx context.Context, t *turnCtx) (string, error) {
	history, err := r.sessions.History(ctx, t.in.UserID, 0)
	if err != nil {
		return "", err
	}

	answer, err := r.assistant.Complete(ctx, CompletionRequest{
		System:      recommendationSystemPrompt(t.snap.Listing()),
		History:     history,
		Message:     t.in.Text,
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return modelUnavailableReply.For(t.lang), nil
	}
	if r.containsGuardPhrase(answer) {
		if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeManager); err != nil {
			return "", err
		}
		return guardHandoffReply.For(t.lang), nil
	}

	return addSpilledPriceNote(answer, t.snap), nil
}

// addSpilledPriceNote flags answers that quote per-ml decant prices, so a
// user does not mistake a 1ml price for a bottle price.
func addSpilledPriceNote(answer string, snap *Snapshot) string {
	lower := strings.ToLower(answer)
	mentionsSpilled := false
	for _, p := range snap.Products {
		if p.Type == models.TypeSpilled && strings.Contains(lower, strings.ToLower(p.Name)) {
			mentionsSpilled = true
			break
		}
	}
	if !mentionsSpilled {
		return answer
	}
	for _, p := range snap.Products {
		if p.Cost > 0 && strings.Contains(answer, p.CostText()) {
			return answer + "\n *Некоторые цены указаны за 1 мл.*"
		}
	}
	return answer
}

// 11. Full-bottle query.

func (r *Router) matchFullBottle(t *turnCtx) bool {
	return containsAny(t.lowerMsg, fullBottleKeywords)
}

func (r *Router) handleFullBottle(ctx context.Context, t *turnCtx) (string, error) {
	product := r.searchProduct(t.lowerMsg, t.snap)
	if product == nil {
		return clarifyFullBottleReply.For(t.lang), nil
	}
	if err := r.sessions.SetLastProduct(ctx, t.in.UserID, *product); err != nil {
		return "", err
	}
	return detailCard(*product).For(t.lang), nil
}

// searchProduct resolves a free-form query: direct substring on name or
// brand, then brand-filtered lookup, then fuzzy name search.
func (r *Router) searchProduct(query string, snap *Snapshot) *models.Product {
	query = strings.TrimSpace(strings.ToLower(query))

	for i, p := range snap.Products {
		if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(query, strings.ToLower(p.Name)) ||
			(p.Brand != "" && strings.Contains(query, strings.ToLower(p.Brand))) {
			return &snap.Products[i]
		}
	}

	if brand, ok := r.extractBrand(StripPunctuation(query), snap.Brands); ok {
		for i, p := range snap.Products {
			if TokenSortRatio(strings.ToLower(brand), strings.ToLower(p.Brand)) >= r.cfg.BrandEqualThreshold {
				return &snap.Products[i]
			}
		}
	}

	names := make([]string, len(snap.Products))
	for i, p := range snap.Products {
		names[i] = strings.ToLower(p.Name)
	}
	best, score, ok := BestMatch(query, names, TokenSortRatio)
	if ok && score >= r.cfg.SearchThreshold {
		for i, p := range snap.Products {
			if strings.ToLower(p.Name) == best {
				return &snap.Products[i]
			}
		}
	}
	return nil
}

// 12. Price query: answer for the remembered product only when the message
// still plausibly refers to it.

func (r *Router) matchPrice(t *turnCtx) bool {
	return containsAny(t.lowerMsg, priceKeywords)
}

func (r *Router) handlePrice(ctx context.Context, t *turnCtx) (string, error) {
	last, err := r.sessions.LastProduct(ctx, t.in.UserID)
	if err != nil {
		return "", err
	}
	if last != nil {
		if r.stillAboutProduct(t, *last) {
			return priceReply(*last).For(t.lang), nil
		}
		return clarifyPriceReply.For(t.lang), nil
	}

	// Nothing remembered yet: the question may name the product itself.
	if product := r.searchProduct(t.lowerMsg, t.snap); product != nil {
		if err := r.sessions.SetLastProduct(ctx, t.in.UserID, *product); err != nil {
			return "", err
		}
		return priceReply(*product).For(t.lang), nil
	}
	return clarifyPriceReply.For(t.lang), nil
}

// stillAboutProduct decides whether a price question is still about the
// remembered product. A bare "сколько стоит" keeps the context; once the
// message names something, it must match the remembered product name.
func (r *Router) stillAboutProduct(t *turnCtx, p models.Product) bool {
	residual := t.cleanMsg
	for _, kw := range priceKeywords {
		residual = strings.ReplaceAll(residual, kw, "")
	}
	if strings.TrimSpace(residual) == "" {
		return true
	}
	return PartialRatio(strings.ToLower(p.Name), t.lowerMsg) >= r.cfg.LastProductThreshold
}

// 13. Follow-up about price or availability without a product name.

func (r *Router) matchFollowUp(t *turnCtx) bool {
	if !containsAny(t.lowerMsg, followUpKeywords) {
		return false
	}
	for _, p := range t.snap.Products {
		if strings.Contains(t.lowerMsg, strings.ToLower(p.Name)) {
			return false
		}
	}
	return true
}

func (r *Router) handleFollowUp(ctx context.Context, t *turnCtx) (string, error) {
	last, err := r.sessions.LastProduct(ctx, t.in.UserID)
	if err != nil {
		return "", err
	}
	if last != nil && strings.Contains(t.lowerMsg, strings.ToLower(last.Name)) {
		return detailCard(*last).For(t.lang), nil
	}
	return clarifyFollowUpReply.For(t.lang), nil
}

// 14. Decanted perfume query.

func (r *Router) matchSpilled(t *turnCtx) bool {
	return containsAny(t.cleanMsg, spilledKeywords)
}

func (r *Router) handleSpilled(ctx context.Context, t *turnCtx) (string, error) {
	if !t.brandOK {
		return clarifySpilledBrandReply.For(t.lang), nil
	}

	products := t.snap.ProductsByBrand(t.brand, r.cfg.SpilledBrandThreshold, models.TypeSpilled)
	if len(products) == 0 {
		return clarifySpilledNameReply.For(t.lang), nil
	}

	if containsAny(t.lowerMsg, listKeywords) {
		return spilledListReply(t.brand, products).For(t.lang), nil
	}

	p := products[0]
	if err := r.sessions.SetLastProduct(ctx, t.in.UserID, p); err != nil {
		return "", err
	}
	return detailCard(p).For(t.lang), nil
}

// 15. Brand query, with or without a product name after the brand.

func (r *Router) matchBrand(t *turnCtx) bool {
	return t.brandOK
}

func (r *Router) handleBrand(ctx context.Context, t *turnCtx) (string, error) {
	msg := strings.ReplaceAll(t.lowerMsg, "мл.", "мл")
	asksSpilled := containsAny(msg, spilledExtKeywords)

	var products []models.Product
	if asksSpilled {
		products = spilledByExactBrand(t.snap, t.brand)
	} else {
		products = t.snap.ProductsByBrand(t.brand, r.cfg.SearchThreshold, models.TypeOriginal)
		if len(products) == 0 {
			products = spilledByExactBrand(t.snap, t.brand)
		}
	}

	leftover := strings.TrimSpace(strings.ReplaceAll(t.cleanMsg, strings.ToLower(t.brand), ""))

	// A bare brand mention is a browse: enumerate a short assortment, ask
	// to narrow down a long one.
	if len([]rune(leftover)) < 3 {
		return r.browseBrand(t, products), nil
	}

	names := make([]string, len(products))
	for i, p := range products {
		names[i] = strings.ToLower(p.Name)
	}
	best, score, ok := BestMatch(leftover, names, TokenSortRatio)
	if ok && score >= r.cfg.BrandItemThreshold {
		for _, p := range products {
			if strings.ToLower(p.Name) == best {
				if err := r.sessions.SetLastProduct(ctx, t.in.UserID, p); err != nil {
					return "", err
				}
				return detailCard(p).For(t.lang), nil
			}
		}
	}

	return r.browseBrand(t, products), nil
}

// spilledByExactBrand narrows the decant assortment to one brand, matched
// exactly: the brand was already fuzzily resolved against the brand set.
func spilledByExactBrand(snap *Snapshot, brand string) []models.Product {
	var out []models.Product
	for _, p := range snap.ProductsByType(models.TypeSpilled) {
		if strings.EqualFold(p.Brand, brand) {
			out = append(out, p)
		}
	}
	return out
}

func (r *Router) browseBrand(t *turnCtx, products []models.Product) string {
	switch {
	case len(products) == 0:
		return brandNotFoundReply(t.brand).For(t.lang)
	case len(products) > 10:
		return tooManyItemsReply(t.brand).For(t.lang)
	default:
		return brandListReply(t.brand, products).For(t.lang)
	}
}

// 16. Purchase intent: the bot never places orders.

func (r *Router) matchPurchase(t *turnCtx) bool {
	return containsAny(t.lowerMsg, purchaseKeywords)
}

func (r *Router) handlePurchase(_ context.Context, t *turnCtx) (string, error) {
	return purchaseReply.For(t.lang), nil
}

// 17. Direct catalog match: exact substring first, then fuzzy with full
// bottles preferred over decants.

func (r *Router) matchDirect(t *turnCtx) bool {
	t.direct = r.findBestMatch(t)
	return t.direct != nil
}

func (r *Router) handleDirect(ctx context.Context, t *turnCtx) (string, error) {
	product := *t.direct
	if err := r.sessions.SetLastProduct(ctx, t.in.UserID, product); err != nil {
		return "", err
	}
	return detailCard(product).For(t.lang), nil
}

func (r *Router) findBestMatch(t *turnCtx) *models.Product {
	query := strings.TrimSpace(t.lowerMsg)
	if query == "" {
		return nil
	}

	for i, p := range t.snap.Products {
		if strings.Contains(query, strings.ToLower(p.Name)) ||
			(p.Brand != "" && strings.Contains(query, strings.ToLower(p.Brand))) {
			return &t.snap.Products[i]
		}
	}

	asksSpilled := containsAny(t.cleanMsg, spilledExtKeywords)
	if asksSpilled {
		return r.fuzzyByType(query, t.snap, models.TypeSpilled)
	}
	if p := r.fuzzyByType(query, t.snap, models.TypeOriginal); p != nil {
		return p
	}
	return r.fuzzyByType(query, t.snap, models.TypeSpilled)
}

// fuzzyByType picks the first product of the given type whose name clears
// the search threshold.
func (r *Router) fuzzyByType(query string, snap *Snapshot, pt models.ProductType) *models.Product {
	products := snap.ProductsByType(pt)
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = strings.ToLower(p.Name)
	}
	best, score, ok := BestMatch(query, names, TokenSortRatio)
	if !ok || score < r.cfg.SearchThreshold {
		return nil
	}
	for i, p := range products {
		if strings.ToLower(p.Name) == best {
			return &products[i]
		}
	}
	return nil
}

// 18. Guarded model fallback.

func (r *Router) handleFallback(ctx context.Context, t *turnCtx) (string, error) {
	history, err := r.sessions.History(ctx, t.in.UserID, 0)
	if err != nil {
		return "", err
	}

	answer, err := r.assistant.Complete(ctx, CompletionRequest{
		System:      fallbackSystemPrompt(t.snap.Listing()),
		History:     history,
		Message:     t.in.Text,
		MaxTokens:   400,
		Temperature: 0.2,
	})
	if err != nil {
		// 19. Model unreachable: hand off rather than leave silence.
		return "", err
	}

	if r.containsGuardPhrase(answer) {
		if err := r.sessions.SetMode(ctx, t.in.UserID, models.ModeManager); err != nil {
			return "", err
		}
		return guardHandoffReply.For(t.lang), nil
	}

	return answer, nil
}
