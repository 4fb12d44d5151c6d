package dispatcher

import (
	"fmt"
	"strings"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
	"github.com/conmuninw/gameruleTh-Bot/pkg/currency"
)

const (
	genericErrorText  = "❌ เกิดข้อผิดพลาดในระบบ กรุณาลองใหม่อีกครั้ง\n\n💬 หากมีปัญหา ติดต่อ support"
	adminOnlyText     = "❌ คำสั่งนี้สำหรับแอดมินเท่านั้น"
	reportUsageText   = "❌ กรุณาระบุปัญหาหลังคำสั่ง /report\n\n💡 ตัวอย่าง: /report ไม่สามารถชำระเงินได้"
	replyUsageText    = "❌ รูปแบบคำสั่งไม่ถูกต้อง\n\n💡 ตัวอย่าง: /reply CASE-LVNRM2O0-AB12CD สวัสดีครับ"
	noOpenCaseText    = "❌ ไม่พบรายงานที่เปิดอยู่\n\n💡 กรุณาระบุ Case ID: /close CASE-LVNRM2O0-AB12CD"
	noReportsText     = "📋 ไม่พบรายงานปัญหา\n\n💡 สร้างรายงานใหม่ด้วย /report [ข้อความปัญหา]"
	noOpenReportsText = "📋 ไม่มีรายงานที่เปิดอยู่"
)

func menuMessage() domain.OutboundMessage {
	return domain.ButtonMessage("🤖 บริการกลางบัญชีเกม\n\nเลือกเมนูที่ต้องการ:",
		domain.MenuButton("🎮 เริ่มกลาง", domain.PostbackStartSelling),
		domain.MenuButton("📞 รายงานปัญหา", domain.PostbackReportIssue),
		domain.MenuButton("ℹ️ วิธีใช้", domain.PostbackHowToUse),
	)
}

func howToUseText() string {
	return "📖 วิธีใช้ระบบ:\n\n" +
		"1. กด \"เริ่มกลาง\" เพื่อสร้างธุรกรรมใหม่\n" +
		"2. ส่งรายละเอียดบัญชีเกม\n" +
		"3. แชร์ Transaction ID ให้ผู้ซื้อ\n" +
		"4. ผู้ซื้อส่ง Transaction ID เพื่อเข้าร่วม\n" +
		"5. ชำระเงินผ่านระบบ\n" +
		"6. ส่งและยืนยันรับบัญชี\n\n" +
		"📞 รายงานปัญหา:\n" +
		"• ใช้คำสั่ง /report [ข้อความปัญหา]\n" +
		"• ตัวอย่าง: /report ไม่สามารถชำระเงินได้\n" +
		"• ปิดรายงาน: /close\n\n" +
		fmt.Sprintf("💰 ค่าบริการ: %s/ธุรกรรม", currency.FormatBaht(domain.EscrowFee))
}

func reportIssueText() string {
	return "📞 รายงานปัญหา\n\n" +
		"💬 หากคุณพบปัญหาในการใช้บริการ\n" +
		"โปรดแจ้งเราด้วยคำสั่ง:\n\n" +
		"🔧 /report [ข้อความปัญหา]\n" +
		"💡 ตัวอย่าง: /report ไม่สามารถชำระเงินได้\n\n" +
		"📋 หากปัญหาเกี่ยวข้องกับธุรกรรม\n" +
		"โปรดระบุ Transaction ID ในข้อความ\n\n" +
		"🛠️ แอดมินจะติดต่อกลับคุณเร็วๆ นี้"
}

func contactSupportText() string {
	return "📞 ติดต่อ Support:\n\n" +
		"• Line: @gameruleTh\n\n" +
		"🕒 เวลาทำการ: 09:00-23:00 น."
}

func paymentProofPromptText() string {
	return "✅ รับทราบการชำระเงิน\n\n" +
		"📸 กรุณาส่งภาพหลักฐานการโอนเงิน มาทางแชทนี้\n" +
		"• สกรีนช็อตการโอนเงินจากแอปธนาคาร\n" +
		"• หรือหลักฐานการชำระเงิน\n\n" +
		"⚠️ ระบบจะดำเนินการต่อหลังจากได้รับหลักฐาน"
}

func uploadProofPromptText() string {
	return "📸 กรุณาส่งภาพหลักฐานการโอนเงิน\n\n⚠️ ส่งภาพสกรีนช็อตการโอนเงินมาในแชทนี้"
}

func reportPaymentPromptText(transactionID string) string {
	return "📞 รายงานปัญหาการชำระเงิน\n\n" +
		fmt.Sprintf("📋 Transaction ID: %s\n\n", transactionID) +
		"💬 โปรดพิมพ์ปัญหาที่คุณพบ:\n" +
		"• ไม่สามารถสแกน QR Code ได้\n" +
		"• เกิดข้อผิดพลาดในการโอน\n" +
		"• หรือปัญหาอื่นๆ"
}

func transactionNotFoundText(transactionID string) string {
	return fmt.Sprintf("❌ ไม่พบธุรกรรม ID: %s ในระบบ\n\n", transactionID) +
		"💡 ตรวจสอบว่าได้คัดลอก Transaction ID ถูกต้องหรือไม่"
}

func unrelatedTransactionText(transactionID string) string {
	return fmt.Sprintf("⚠️ พบ Transaction ID: %s แต่ไม่เกี่ยวข้องกับคุณ\n\n", transactionID) +
		"📋 รายงานปัญหาจะถูกส่งโดยไม่มี Transaction ID"
}

func historyText(title string, cases []domain.ReportCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (ล่าสุด %d รายการ):\n\n", title, len(cases))
	for i, c := range cases {
		emoji, label := "🔒", "ปิด"
		if c.Status == domain.CaseOpen {
			emoji, label = "🔓", "เปิด"
		}
		first := "ไม่มีข้อความ"
		if len(c.Messages) > 0 {
			first = preview(c.Messages[0].Text, 30)
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, emoji, c.CaseID)
		fmt.Fprintf(&b, "   📝 %s\n", first)
		fmt.Fprintf(&b, "   📊 สถานะ: %s\n", label)
		fmt.Fprintf(&b, "   ⏰ %s\n\n", c.CreatedAt.Format("02/01/2006"))
	}
	b.WriteString("💡 ปิดรายงานด้วย: /close CASE-ID")
	return b.String()
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}

// errorText turns a classified error message into a chat reply.
func errorText(msg string) string {
	if strings.HasPrefix(msg, "❌") || strings.HasPrefix(msg, "⚠️") {
		return msg
	}
	return "❌ " + msg
}
