package services

import (
	"fmt"
	"strings"

	"perfume-bot/models"
)

// localized is a reply in both supported languages. Russian is the shop's
// primary language and the fallback; a few rarely-hit replies exist only in
// Russian, matching what the shop actually sends.
type localized struct {
	RU string
	KZ string
}

// For picks the text for a detected language.
func (l localized) For(lang Lang) string {
	if lang == LangKZ && l.KZ != "" {
		return l.KZ
	}
	return l.RU
}

var nonTextReply = localized{
	RU: "Вы отправили сообщение не в текстовом формате. Переключаю вас на менеджера, он скоро ответит!",
	KZ: "Сіз мәтін емес хабарлама жібердіңіз. Менеджерге қосамын, ол сізге жауап береді!",
}

var handoffConfirmReply = localized{
	RU: "Я переключаю вас на менеджера. Ожидайте, он скоро с вами свяжется!",
	KZ: "Мен сізді менеджерге қосамын. Ол сізбен жақында байланысады!",
}

var resumeConfirmReply = localized{
	RU: "Диалог с менеджером завершён, я снова к вашим услугам!",
	KZ: "Менеджермен сөйлесу аяқталды, мен қайтадан сізге көмектесе аламын!",
}

// Standing acknowledgment delivered while a manager owns the conversation.
var managerStandbyReply = localized{
	RU: "Вы на связи с менеджером. Пожалуйста, ожидайте.",
	KZ: "Сіз менеджермен байланыстасыз. Күте тұрыңыз.",
}

// ManagerStandby is the acknowledgment the transport sends in place of an
// automatic reply while a manager owns the chat.
func ManagerStandby(lang Lang) string {
	return managerStandbyReply.For(lang)
}

var addressReply = localized{
	RU: "Наш магазин парфюмерии aera находится по адресу: \n" +
		"📍 г. Астана, ул. Мангилик Ел 51, 1 этаж.\n\n" +
		"Мы работаем ежедневно с 10:00 до 22:00. Будем рады видеть вас!\n" +
		"Вы также можете оформить заказ онлайн через наш сайт: aera.kz.\n" +
		"Если хотите связаться с менеджером, напишите *'менеджер'*.",
	KZ: "Біздің aera парфюмерия дүкені келесі мекенжайда орналасқан: \n" +
		"📍 Астана қ., Мәңгілік Ел 51, 1-қабат.\n\n" +
		"Біз күн сайын 10:00 - 22:00 аралығында жұмыс істейміз. Келіңіз, сізді күтеміз!\n" +
		"Сондай-ақ, сіз біздің сайт арқылы онлайн тапсырыс бере аласыз: aera.kz.\n" +
		"Менеджермен байланысу үшін *'менеджер'* деп жазыңыз.",
}

var deliveryReply = localized{
	RU: "Мы доставляем заказы по всему Казахстану:\n" +
		"В пределах г. Астана — стандартная доставка.\n" +
		"По Казахстану — бесплатная доставка при заказе от 30 000 KZT.\n" +
		"В другие города Казахстана (кроме Астаны) доставка через Казпочту — 5 рабочих дней (зависит от региона).\n" +
		"Доставка по СНГ — 20 000 KZT.\n\n" +
		"Вы можете уточнить точную стоимость и сроки у менеджера при оформлении заказа.\n" +
		"Если хотите поговорить с менеджером, напишите *'менеджер'*.",
	KZ: "Біз Қазақстан бойынша жеткіземіз:\n" +
		"Астана қаласы бойынша — стандартты жеткізу.\n" +
		"Қазақстан бойынша — 30 000 KZT жоғары тапсырыс болса, тегін жеткізу.\n" +
		"Қазақстанның басқа қалаларына (Астанадан басқа) Казпошта арқылы — 5 жұмыс күні (өңірге байланысты).\n" +
		"ТМД елдеріне жеткізу — 20 000 KZT.\n\n" +
		"Нақты құнын және мерзімін тапсырыс беру кезінде менеджерден біле аласыз.\n" +
		"Егер сіз менеджермен сөйлескіңіз келсе, *'менеджер'* деп жазыңыз.",
}

var installmentReply = localized{
	RU: "Мы предоставляем возможность оплаты в рассрочку. " +
		"Для уточнения деталей напишите *'менеджер'*, он подскажет все условия!",
	KZ: "Біз Kaspi Red арқылы бөліп төлеу мүмкіндігін ұсынамыз. " +
		"Толық ақпаратты алу үшін *'менеджер'* деп жазыңыз!",
}

var authenticityReply = localized{
	RU: "Вся продукция в нашем магазине является оригинальной и сертифицированной. " +
		"Если у вас есть дополнительные вопросы, напишите *'менеджер'*, он предоставит всю информацию!",
	KZ: "Біздің дүкендегі барлық өнімдер түпнұсқа және сертификатталған. " +
		"Қосымша сұрақтарыңыз болса, *'менеджер'* деп жазыңыз, ол сізге толық ақпарат береді!",
}

var purchaseReply = localized{
	RU: "Я не могу оформить заказ, но передам ваш запрос менеджеру! Напишите *'менеджер'*, и он свяжется с вами.",
	KZ: "Мен тапсырысты рәсімдей алмаймын, бірақ сізді менеджерге қосамын! *'менеджер'* деп жазыңыз, ол сізбен байланысады.",
}

var guardHandoffReply = localized{
	RU: "Переключаю вас на менеджера, он поможет вам более детально!",
	KZ: "Мен сізді менеджерге қосамын, ол сізге егжей-тегжейлі көмектеседі!",
}

var apologyHandoffReply = localized{
	RU: "Извините, я не смог распознать ваш запрос. Переключаю вас на менеджера для более точного ответа.",
	KZ: "Кешіріңіз, сұранысыңызды тани алмадым. Нақтырақ жауап алу үшін сізді менеджерге қосамын.",
}

var modelUnavailableReply = localized{
	RU: "Извините, не могу найти информацию по вашему вопросу. Если хотите поговорить с менеджером, напишите 'менеджер'.",
	KZ: "Кешіріңіз, бізде бұл сұраққа қатысты ақпарат жоқ. Егер сіз менеджермен сөйлескіңіз келсе, «менеджер» деп жазыңыз.",
}

var clarifyPriceReply = localized{
	RU: "Уточните, пожалуйста, о каком аромате идет речь? " +
		"Напишите его название, и я подскажу цену. Если хотите поговорить с менеджером, напишите *'менеджер'*.",
	KZ: "Қай хош иіс туралы айтып тұрғаныңызды нақтылаңызшы? " +
		"Атауын жазыңыз, мен бағасын айтамын. Менеджермен сөйлесу үшін *'менеджер'* деп жазыңыз.",
}

var clarifyFollowUpReply = localized{
	RU: "Можете уточнить, о каком парфюме идет речь? Напишите его название. Если хотите поговорить с менеджером, напишите 'менеджер'.",
}

var clarifyFullBottleReply = localized{
	RU: "Пожалуйста, уточните название товара, для которого вас интересует полный флакон.",
}

var clarifySpilledNameReply = localized{
	RU: "Пожалуйста, уточните название разливного аромата, который вас интересует.",
}

var clarifySpilledBrandReply = localized{
	RU: "Уточните, пожалуйста, какой бренд разливной парфюмерии вас интересует? Если у вас есть вопросы или хотите оформить заказ, напишите *'менеджер'*.",
	KZ: "Қай брендтің құйма парфюмериясы керек екенін нақтылаңызшы?",
}

func welcomeReply(senderName string) localized {
	return localized{
		RU: fmt.Sprintf(
			"Здравствуйте, %s!\n\n"+
				"Если хотите оформить заказ, напишите *'менеджер'*, и я вас соединю.\n"+
				"Если хотите подобрать парфюм, укажите предпочтения (например: цветочный, свежий, сладкий) "+
				"или название конкретного аромата.\n"+
				"Я помогу вам с ценами, наличием и подбором.\n\n"+
				"Чем могу помочь?", senderName),
		KZ: fmt.Sprintf(
			"Сәлеметсіз бе, %s! Мен парфюмерия дүкенінің виртуалды көмекшісімін.\n\n"+
				"Егер сіз тапсырыс бергіңіз келсе, *'менеджер'* деп жазыңыз, мен сізді қосамын.\n"+
				"Егер сізге хош иіс таңдау қажет болса, өз қалауыңызды айтыңыз "+
				"(мысалы: гүлді, сергіткіш, тәтті) немесе нақты иісті атаңыз.\n"+
				"Мен баға, қол жетімділік және таңдау бойынша көмектесе аламын.\n\n"+
				"Қалай көмектесе аламын?", senderName),
	}
}

func priceReply(p models.Product) localized {
	return localized{
		RU: fmt.Sprintf(
			"Цена на *%s* составляет %s KZT.\n"+
				"Если у вас есть дополнительные вопросы или хотите оформить заказ, напишите *'менеджер'*.",
			p.Name, p.CostText()),
		KZ: fmt.Sprintf(
			"*%s* бағасы %s KZT.\n"+
				"Қосымша сұрақтарыңыз болса немесе тапсырыс бергіңіз келсе, *'менеджер'* деп жазыңыз.",
			p.Name, p.CostText()),
	}
}

// detailCard renders the fixed product template: name, description, volume,
// cost, country, and the manager call-to-action. Spilled items are priced
// per 1ml.
func detailCard(p models.Product) localized {
	desc := p.Description
	if desc == "" {
		desc = "нет данных"
	}
	country := p.Country
	if country == "" {
		country = "нет данных"
	}
	priceRU := p.CostText() + " KZT"
	priceKZ := priceRU
	if p.Type == models.TypeSpilled {
		priceRU += " за 1 мл"
		priceKZ += " 1 мл"
	}
	return localized{
		RU: fmt.Sprintf(
			"*%s*\n_%s_\nОбъём: %s\nЦена: %s\nСтрана Производства: %s\n"+
				"------------------------------------\n"+
				"Если у вас есть вопросы или хотите оформить заказ, напишите *'менеджер'*.",
			p.Name, desc, p.Volume, priceRU, country),
		KZ: fmt.Sprintf(
			"*%s*\n_%s_\nКөлемі: %s\nБағасы: %s\nӨндіріс елі: %s\n"+
				"------------------------------------\n"+
				"Сұрақтарыңыз болса немесе тапсырыс бергіңіз келсе, *'менеджер'* деп жазыңыз.",
			p.Name, desc, p.Volume, priceKZ, country),
	}
}

func brandListReply(brand string, products []models.Product) localized {
	var ru, kz strings.Builder
	fmt.Fprintf(&ru, "Из парфюмерии %s у нас есть:\n", brand)
	fmt.Fprintf(&kz, "%s бренді бойынша бізде:\n", brand)
	for i, p := range products {
		fmt.Fprintf(&ru, "%d. %s - %s (%s KZT)\n", i+1, p.Name, p.Volume, p.CostText())
		fmt.Fprintf(&kz, "%d. %s (%s KZT)\n", i+1, p.Name, p.CostText())
	}
	ru.WriteString("\nЕсли вас интересует конкретный аромат, уточните название. " +
		"Для оформления заказа или консультации напишите *'менеджер'*.")
	kz.WriteString("\nЕгер нақты бір түрі қызықтырса, нақтылаңыз. " +
		"Тапсырыс беру немесе толық ақпарат алу үшін *'менеджер'* деп жазыңыз.")
	return localized{RU: ru.String(), KZ: kz.String()}
}

func spilledListReply(brand string, products []models.Product) localized {
	var ru, kz strings.Builder
	fmt.Fprintf(&ru, "Из разливной парфюмерии бренда %s у нас есть:\n", brand)
	fmt.Fprintf(&kz, "%s брендіне арналған құйма парфюмерия:\n", brand)
	for i, p := range products {
		fmt.Fprintf(&ru, "%d. %s\n", i+1, p.Name)
		fmt.Fprintf(&kz, "%d. %s\n", i+1, p.Name)
	}
	return localized{RU: strings.TrimRight(ru.String(), "\n"), KZ: strings.TrimRight(kz.String(), "\n")}
}

func tooManyItemsReply(brand string) localized {
	return localized{
		RU: fmt.Sprintf(
			"У нас есть более 10 ароматов бренда %s. "+
				"Уточните, пожалуйста, название аромата, и я покажу подходящие варианты.", brand),
	}
}

func brandNotFoundReply(brand string) localized {
	return localized{
		RU: fmt.Sprintf(
			"Мы не нашли товары по запросу '%s'. "+
				"Возможно, в базе они записаны по-другому. Напишите *'менеджер'* для уточнения.", brand),
		KZ: fmt.Sprintf(
			"Кешіріңіз, %s брендін қазір таба алмадық. Менеджермен сөйлесу үшін 'менеджер' деп жазыңыз.", brand),
	}
}
