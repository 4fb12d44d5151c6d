package reporting

import (
	"fmt"
	"strings"

	"github.com/conmuninw/gameruleTh-Bot/internal/domain"
)

func existingCaseText(c domain.ReportCase) string {
	return fmt.Sprintf("⚠️ คุณมีรายงานที่ยังไม่ปิดอยู่แล้ว (Case ID: %s)\n\n"+
		"💬 โปรดรอการตอบกลับจากแอดมินหรือใช้คำสั่ง /close เพื่อปิดรายงานก่อน", c.CaseID)
}

func caseCreatedText(c domain.ReportCase, text string) string {
	return fmt.Sprintf("📋 สร้างรายงานปัญหาเรียบร้อย\n\n"+
		"🆔 Case ID: %s\n"+
		"📝 ข้อความ: %s\n\n"+
		"🛠️ แอดมินจะติดต่อกลับคุณเร็วๆ นี้\n"+
		"💬 คุณสามารถส่งข้อความเพิ่มเติมได้เลย หรือใช้คำสั่ง /close เพื่อปิดรายงาน", c.CaseID, text)
}

func caseClosedText(caseID string) string {
	return fmt.Sprintf("❌ รายงานนี้ถูกปิดแล้ว (Case ID: %s)\n\n"+
		"📞 หากยังมีปัญหา โปรดสร้างรายงานใหม่ด้วย /report", caseID)
}

func userMessageAckText(text string) string {
	return fmt.Sprintf("✅ รายงานเรียบร้อย\n\n📝 ข้อความ: %s\n\n🛠️ รอแอดมินตอบกลับ..", text)
}

func adminReplyText(text string) string {
	return fmt.Sprintf("📩 ตอบกลับจากแอดมิน\n\n"+
		"💬 ข้อความ: %s\n\n"+
		"📞 ตอบกลับได้โดยการพิมพ์ข้อความปกติ ไม่ต้องพิมพ์คำสั่ง /report", text)
}

func adminReplyAckText(c domain.ReportCase) string {
	return fmt.Sprintf("✅ ส่งข้อความถึงผู้ใช้แล้ว (Case ID: %s)", c.CaseID)
}

func filerClosedText(caseID string) string {
	return fmt.Sprintf("✅ ปิดรายงานปัญหาเรียบร้อย (Case ID: %s)\n\n"+
		"📞 หากยังมีปัญหา โปรดสร้างรายงานใหม่ด้วย /report", caseID)
}

func adminClosedText(c domain.ReportCase, closedBy string) string {
	return fmt.Sprintf("✅ ปิดรายงานปัญหาแล้ว\n\n🆔 Case ID: %s\n👤 User ID: %s\n🔒 ปิดโดย: %s",
		c.CaseID, c.UserID, closedBy)
}

// adminRelayText summarises a case event for the admin with the reply
// command to use.
func adminRelayText(header string, c domain.ReportCase, text string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "🆔 Case ID: %s\n", c.CaseID)
	fmt.Fprintf(&b, "👤 User ID: %s\n", c.UserID)
	if c.TransactionID != "" {
		fmt.Fprintf(&b, "📋 Transaction ID: %s\n", c.TransactionID)
	}
	fmt.Fprintf(&b, "📝 ข้อความ: %s\n\n", text)
	fmt.Fprintf(&b, "💬 ตอบกลับด้วย: /reply %s [ข้อความ]", c.CaseID)
	return b.String()
}

const (
	newCaseHeader    = "🚨 มีรายงานปัญหาใหม่"
	newMessageHeader = "💬 มีข้อความใหม่ในรายงานปัญหา"
	disputeHeader    = "⚠️ ผู้ซื้อขอคืนเงิน"
)
