package audit

import "fmt"

var phrases = map[EntityType]map[ActionType]string{
	EntityCase: {
		ActionCreate: "Yeni dosya oluşturuldu",
		ActionUpdate: "Dosya güncellendi",
		ActionDelete: "Dosya silindi",
		ActionView:   "Dosya görüntülendi",
	},
	EntityClient: {
		ActionCreate: "Yeni müvekkil eklendi",
		ActionUpdate: "Müvekkil güncellendi",
		ActionDelete: "Müvekkil silindi",
		ActionView:   "Müvekkil görüntülendi",
	},
	EntityEvent: {
		ActionCreate: "Yeni etkinlik eklendi",
		ActionUpdate: "Etkinlik güncellendi",
		ActionDelete: "Etkinlik silindi",
		ActionView:   "Etkinlik görüntülendi",
	},
	EntityFinancial: {
		ActionCreate: "Finansal işlem eklendi",
		ActionUpdate: "Finansal işlem güncellendi",
		ActionDelete: "Finansal işlem silindi",
	},
	EntityDocument: {
		ActionCreate: "Yeni belge eklendi",
		ActionUpdate: "Belge güncellendi",
		ActionDelete: "Belge silindi",
		ActionView:   "Belge görüntülendi",
	},
	EntityMessage: {
		ActionCreate: "Mesaj gönderildi",
		ActionUpdate: "Mesaj okundu",
	},
	EntityCommunication: {
		ActionCreate: "Yeni iletişim kaydı eklendi",
		ActionUpdate: "İletişim kaydı güncellendi",
		ActionDelete: "İletişim kaydı silindi",
	},
}

// Describe returns the stock description for an action on an entity type.
func Describe(target EntityType, action ActionType) string {
	if p, ok := phrases[target][action]; ok {
		return p
	}
	return fmt.Sprintf("%s %s", target, action)
}

// PaymentReceived describes a payment taken against a case fee.
func PaymentReceived(amount float64) string {
	return fmt.Sprintf("Ödeme alındı (%s TL)", FormatAmount(amount))
}

// FeeUpdated describes a change to a case's total fee.
func FeeUpdated(amount float64) string {
	return fmt.Sprintf("Ücret güncellendi (%s TL)", FormatAmount(amount))
}

// FormatAmount renders a lira amount without decimals when it is whole and
// with two otherwise.
func FormatAmount(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
