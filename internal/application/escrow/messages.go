package escrow

import (
	"fmt"
	"strings"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/currency"
)

const supportLine = "Line : @gameruleTh"

var statusLabels = map[domain.TransactionStatus]string{
	domain.StatusWaitingBuyer:          "รอผู้ซื้อ",
	domain.StatusWaitingPayment:        "รอชำระเงิน",
	domain.StatusPaymentVerification:   "รอตรวจสอบการชำระเงิน",
	domain.StatusPaid:                  "ชำระเงินแล้ว",
	domain.StatusDelivering:            "กำลังส่งมอบบัญชี",
	domain.StatusAwaitingSellerPayment: "รอโอนเงินให้ผู้ขาย",
	domain.StatusCompleted:             "เสร็จสิ้น",
	domain.StatusCancelled:             "ยกเลิก",
}

func statusLabel(s domain.TransactionStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

func sellerFlowText() string {
	return "🎮 เริ่มต้นกลางบัญชีเกม\n\n" +
		fmt.Sprintf("💵 ค่ากลาง %s\n", currency.FormatBaht(domain.EscrowFee)) +
		"📋 กรุณาส่งรายละเอียดในรูปแบบ:\n" +
		"• ต้องการขายเกมอะไร\n" +
		"• เลเวล / ชื่อผู้ขาย\n" +
		"• ราคาที่ต้องการ (ไม่รวมค่ากลาง)\n" +
		"• รายละเอียดเพิ่มเติม (ไม่บังคับ)\n\n" +
		"💡 ตัวอย่าง: \"ArenaBreakout L50 1700 มีสกินหายาก\""
}

func createdText(tx domain.Transaction) string {
	return "✅ สร้างธุรกรรมสำเร็จ!\n\n" +
		fmt.Sprintf("🎮 เกม: %s\n", tx.GameDetails.Game) +
		fmt.Sprintf("📊 เลเวล: %s\n", tx.GameDetails.Level) +
		fmt.Sprintf("💰 ราคา: %s\n", currency.FormatBaht(tx.GameDetails.Price)) +
		fmt.Sprintf("💵 ค่ากลาง: %s\n\n", currency.FormatBaht(domain.EscrowFee)) +
		"เมื่อมีผู้ซื้อเข้าร่วม ระบบจะแจ้งให้คุณทราบ\n\n" +
		"🔗 แชร์ Transaction ID ด้านล่างนี้ให้ผู้ซื้อ👇"
}

func buyerJoinedText(tx domain.Transaction) string {
	return "✅ เข้าร่วมธุรกรรมสำเร็จ!\n\n" +
		"📋 รายละเอียด:\n" +
		fmt.Sprintf("• เกม: %s\n", tx.GameDetails.Game) +
		fmt.Sprintf("• เลเวล: %s\n", tx.GameDetails.Level) +
		fmt.Sprintf("• ราคา: %s\n", currency.FormatBaht(tx.GameDetails.Price)) +
		fmt.Sprintf("• ค่ากลาง: %s\n", currency.FormatBaht(domain.EscrowFee)) +
		fmt.Sprintf("• รวม: %s\n\n", currency.FormatBaht(tx.TotalAmount())) +
		"💳 กดปุ่มด้านล่างเพื่อชำระเงิน"
}

func buyerRejoinedText(tx domain.Transaction) string {
	return "✅ คุณได้เข้าร่วมธุรกรรมนี้แล้ว\n\n" +
		fmt.Sprintf("💰 ยอดชำระ: %s\n", currency.FormatBaht(tx.TotalAmount())) +
		"💳 กดปุ่มชำระเงินเพื่อดำเนินการต่อ"
}

func sellerBuyerJoinedText(tx domain.Transaction) string {
	return "🎯 มีผู้ซื้อเข้าร่วมแล้ว!\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n\n", tx.TransactionID) +
		fmt.Sprintf("💰 ราคา: %s\n", currency.FormatBaht(tx.GameDetails.Price)) +
		fmt.Sprintf("💵 ค่ากลาง: %s\n", currency.FormatBaht(domain.EscrowFee)) +
		fmt.Sprintf("📜 รวม: %s\n\n", currency.FormatBaht(tx.TotalAmount())) +
		"⏳ รอผู้ซื้อชำระเงิน..."
}

func paymentRequestText(amount int64, ref domain.PaymentReference) string {
	return "💳 ชำระเงินผ่านพร้อมเพย์\n\n" +
		fmt.Sprintf("💰 จำนวน: %s\n\n", currency.FormatBaht(amount)) +
		"🔗 กดเปิด QR Code เพื่อชำระเงิน\n" +
		fmt.Sprintf("🖼️ สำรอง: %s\n\n", ref.FallbackURL) +
		"📸 หลังจากชำระเงินแล้ว กรุณาส่งภาพหลักฐานการโอนเงินมาทางแชทนี้เพื่อดำเนินการต่อ"
}

func proofReceivedText(tx domain.Transaction) string {
	return "✅ รับหลักฐานการโอนเงินเรียบร้อยแล้ว!\n\n" +
		fmt.Sprintf("💰 จำนวน: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"🕒 ระบบกำลังตรวจสอบการชำระเงิน\n" +
		"⏳ โดยปกติใช้เวลาไม่เกิน 5 นาที\n\n" +
		"📞 หากมีข้อสงสัย ติดต่อ support ที่ " + supportLine
}

func adminProofText(tx domain.Transaction) string {
	return "🔔 มีหลักฐานการชำระเงินใหม่\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("💰 จำนวน: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"โปรดตรวจสอบหลักฐานการโอนเงิน:"
}

func sellerPaidText(tx domain.Transaction) string {
	return "✅ การชำระเงินได้รับการยืนยันแล้ว!\n" +
		fmt.Sprintf("• ยอดชำระ: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"📦 กรุณามอบบัญชีเกมให้ผู้ซื้อ\n" +
		fmt.Sprintf("• มอบบัญชีเกม: %s\n\n", tx.GameDetails.Game) +
		"💡 หลังจากมอบแล้ว กดปุ่ม \"มอบแล้ว\" ด้านล่าง"
}

func buyerPaidText(tx domain.Transaction) string {
	return "✅ การชำระเงินได้รับการยืนยันแล้ว!\n\n" +
		fmt.Sprintf("• ยอดชำระ: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"📦 รอผู้ขายมอบบัญชีให้คุณ\n" +
		"⏳ ผู้ขายจะมอบบัญชีในเร็วๆนี้"
}

func adminConfirmedText(tx domain.Transaction) string {
	return "✅ ยืนยันการชำระเงินเรียบร้อย\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("💰 จำนวน: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"📧 แจ้งผู้ขายและผู้ซื้อเรียบร้อยแล้ว"
}

func buyerRejectedText(tx domain.Transaction) string {
	return "❌ การชำระเงินของคุณไม่ผ่านการตรวจสอบ\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("💰 ยอดที่ต้องชำระ: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"📸 กรุณาตรวจสอบยอดโอนและส่งหลักฐานการโอนเงินอีกครั้ง\n" +
		"📞 หากมีข้อสงสัย ติดต่อ support ที่ " + supportLine
}

func adminRejectedText(tx domain.Transaction) string {
	return fmt.Sprintf("❌ ปฏิเสธการชำระเงินของธุรกรรม %s แล้ว\n\n", tx.TransactionID) +
		"📧 แจ้งผู้ซื้อให้ส่งหลักฐานใหม่เรียบร้อยแล้ว"
}

func buyerDeliveredText(tx domain.Transaction) string {
	return "📦 ผู้ขายส่งบัญชีให้คุณแล้ว!\n\n" +
		"🎮 กรุณาตรวจสอบบัญชี:\n" +
		fmt.Sprintf("• เกม: %s\n\n", tx.GameDetails.Game) +
		"✅ หากได้รับและตรวจสอบเรียบร้อยแล้ว กดปุ่ม \"ยืนยันรับบัญชี\"\n\n" +
		"❌ หากผู้ขายไม่ได้ส่งบัญชีให้คุณภายใน 5 นาที กดปุ่ม \"ยังไม่ได้รับ\""
}

func sellerDeliveredText() string {
	return "✅ ระบบรับทราบการส่งบัญชีแล้ว\n\n" +
		"📦 ระบบได้แจ้งผู้ซื้อให้ตรวจสอบบัญชีแล้ว\n" +
		"⏳ รอผู้ซื้อยืนยันรับบัญชี"
}

func buyerReceiptText(tx domain.Transaction) string {
	return "✅ ยืนยันรับบัญชีเรียบร้อย!\n\n" +
		fmt.Sprintf("💰 ยอดชำระ: %s\n", currency.FormatBaht(paymentAmount(tx))) +
		"⏳ ระบบกำลังโอนเงินให้ผู้ขาย\n\n" +
		"⭐ ขอบคุณที่ใช้บริการ"
}

func sellerReceiptText(tx domain.Transaction) string {
	return "✅ ผู้ซื้อยืนยันรับบัญชีเรียบร้อย!\n\n" +
		"💰 ระบบกำลังโอนเงินให้คุณ\n" +
		fmt.Sprintf("⏳ จำนวน: %s\n", currency.FormatBaht(tx.PayoutAmount())) +
		fmt.Sprintf("💵 หักค่ากลาง %s", currency.FormatBaht(domain.EscrowFee))
}

func bankInfoRequestText() string {
	return "🏦 กรุณากรอกข้อมูลบัญชีธนาคาร\n\n" +
		"เพื่อรับเงินจากการขายบัญชีเกม\n\n" +
		"ส่งในรูปแบบ:\n" +
		"ชื่อธนาคาร|เลขพร้อมเพย์|ชื่อบัญชี\n\n" +
		"💡 ตัวอย่าง: \"กสิกรไทย|0812345678|สมชาย ใจดี\"\n\n" +
		"⚠️ ข้อมูลนี้จะถูกใช้สำหรับการโอนเงินให้คุณเท่านั้น"
}

func sellerNotReceivedText(tx domain.Transaction) string {
	return "❌ ผู้ซื้อยังไม่ได้รับบัญชีจากคุณ\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		"⚠️ กรุณาส่งบัญชีเกมให้ผู้ซื้อตอนนี้"
}

func buyerNotReceivedText() string {
	return "❗️ แจ้งผู้ขายให้ส่งบัญชีอีกครั้งแล้ว\n\n" +
		"⚠️ หากยังไม่ได้รับอีก กดปุ่ม \"ขอคืนเงิน\" แอดมินจะเข้ามาตรวจสอบและดำเนินการคืนเงิน"
}

func adminEscalationText(tx domain.Transaction) string {
	return "⏰ ผู้ซื้อแจ้งว่ายังไม่ได้รับบัญชี\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("💰 ยอดชำระ: %s\n\n", currency.FormatBaht(paymentAmount(tx))) +
		"❗️ ธุรกรรมยังอยู่ในสถานะส่งมอบ โปรดตรวจสอบกับผู้ขาย"
}

func sellerRefundText(tx domain.Transaction) string {
	return "❌ ผู้ซื้อขอคืนเงินเนื่องจากไม่ได้รับบัญชีจากคุณ\n\n" +
		fmt.Sprintf("⚠️ กรุณาส่งภาพหลักฐานการส่งบัญชีให้ผู้ซื้อทาง %s พร้อมรหัส Transaction ID %s\n\n", supportLine, tx.TransactionID) +
		"❗️ หากไม่ได้รับหลักฐาน แอดมินจะพิจารณาคืนเงินให้ผู้ซื้อและยกเลิกธุรกรรมนี้"
}

func buyerRefundText() string {
	return "⚠️ แอดมินกำลังตรวจสอบหลักฐานจากผู้ขาย\n\n" +
		"❗️ หากไม่ได้รับหลักฐานการส่งมอบจากผู้ขาย แอดมินจะคืนเงินให้คุณ\n\n" +
		"✅ ถ้าได้รับบัญชีแล้วกดปุ่ม \"ยืนยันรับบัญชี\"\n\n" +
		"📝 เพื่อความรวดเร็วในการคืนเงิน กรุณาแจ้งชื่อธนาคาร เลขบัญชี และชื่อบัญชีในแชทนี้"
}

func adminRefundText(tx domain.Transaction) string {
	return "⚠️ ผู้ซื้อขอคืนเงิน\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n\n", tx.TransactionID) +
		"❗️ ตรวจสอบหลักฐานการส่งมอบใน Line\n\n" +
		"ดูรายละเอียดบัญชีธนาคารผู้ซื้อในแชทเพจ"
}

func disputeText(tx domain.Transaction) string {
	return fmt.Sprintf("ขอคืนเงิน: ไม่ได้รับบัญชีเกม %s (Transaction ID: %s)", tx.GameDetails.Game, tx.TransactionID)
}

func adminPayoutText(tx domain.Transaction, ref *domain.PaymentReference) string {
	var b strings.Builder
	b.WriteString("💰 จ่ายเงินให้ผู้ขาย\n\n")
	fmt.Fprintf(&b, "📋 Transaction ID: %s\n", tx.TransactionID)
	if bank := tx.SellerBankInfo; bank != nil {
		fmt.Fprintf(&b, "👤 ผู้ขาย: %s\n", bank.AccountName)
		fmt.Fprintf(&b, "🏦 ธนาคาร: %s\n", bank.BankName)
		fmt.Fprintf(&b, "📞 พร้อมเพย์: %s\n", bank.PromptPayNumber)
	}
	fmt.Fprintf(&b, "💵 จำนวน: %s\n\n", currency.FormatBaht(tx.PayoutAmount()))
	if ref != nil {
		b.WriteString("📱 สแกน QR Code ด้านบนเพื่อจ่ายเงินผ่านแอปธนาคาร")
	} else {
		b.WriteString("⚠️ สร้าง QR Code ไม่ได้ กรุณาโอนเงินตามเลขบัญชีด้านบน")
	}
	return b.String()
}

func sellerBankInfoText(tx domain.Transaction) string {
	return "✅ ได้รับข้อมูลบัญชีเรียบร้อย\n\n" +
		fmt.Sprintf("🏦 ธนาคาร: %s\n", tx.SellerBankInfo.BankName) +
		fmt.Sprintf("👤 ชื่อบัญชี: %s\n", tx.SellerBankInfo.AccountName) +
		fmt.Sprintf("💵 จำนวนที่จะได้รับ: %s\n\n", currency.FormatBaht(tx.PayoutAmount())) +
		"⏳ แอดมินกำลังดำเนินการโอนเงินให้คุณ"
}

func adminPayoutProblemText(tx domain.Transaction) string {
	return "❌ รับทราบปัญหาการโอนเงิน\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n\n", tx.TransactionID) +
		"🛠️ กรุณาติดต่อทีม support หรือจัดการด้วยตนเอง"
}

func cancelledText(tx domain.Transaction) string {
	return fmt.Sprintf("❌ ธุรกรรม %s ถูกยกเลิกแล้ว", tx.TransactionID)
}

func adminCancelledText(tx domain.Transaction) string {
	return "❌ ยกเลิกธุรกรรม\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("📌 สถานะก่อนยกเลิก: %s", statusLabel(tx.Status))
}

func sellerPayoutText(tx domain.Transaction) string {
	bankName := "-"
	if tx.SellerBankInfo != nil {
		bankName = tx.SellerBankInfo.BankName
	}
	return "🎉 โปรดเช็คยอดเงินเข้าของคุณ!\n\n" +
		"✅ ระบบได้โอนเงินให้คุณแล้ว\n" +
		fmt.Sprintf("💰 จำนวน: %s\n", currency.FormatBaht(tx.PayoutAmount())) +
		fmt.Sprintf("🏦 เข้าบัญชี: %s\n\n", bankName) +
		"⭐ ขอบคุณที่ใช้บริการ"
}

func adminPayoutDoneText(tx domain.Transaction) string {
	accountName := "-"
	if tx.SellerBankInfo != nil {
		accountName = tx.SellerBankInfo.AccountName
	}
	return "✅ โอนเงินให้ผู้ขายเรียบร้อย\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n", tx.TransactionID) +
		fmt.Sprintf("💰 จำนวน: %s\n", currency.FormatBaht(tx.PayoutAmount())) +
		fmt.Sprintf("👤 ผู้ขาย: %s", accountName)
}

func paymentAmount(tx domain.Transaction) int64 {
	if tx.PaymentAmount != nil {
		return *tx.PaymentAmount
	}
	return tx.TotalAmount()
}
