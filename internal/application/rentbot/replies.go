package rentbot

import (
	"fmt"
	"strings"

	"github.com/rentbot/backend/internal/domain/rental"
)

// maxCandidates bounds the disambiguation list
const maxCandidates = 5

const (
	replyDatabaseError = "❌ Database error. Please try again or contact support."

	replyNotUnderstood = "🤔 I didn't understand that. Please try:\n" +
		"• 'Kamau paid 500000'\n" +
		"• 'Record payment: John 600k December'\n" +
		"• 'Did Sarah pay this month?'"

	replyHelp = "🤔 I didn't understand that. I can help you:\n\n" +
		"• Record payments: 'Kamau paid 500000'\n" +
		"• Check status: 'Did Sarah pay this month?'\n\n" +
		"Try one of these!"

	replyMissingPaymentFields = "❌ Please include tenant name and amount.\n" +
		"Example: 'Kamau paid 500000'"

	replyMissingTenant = "❌ Please specify which tenant.\n" +
		"Example: 'Did Kamau pay this month?'"

	replyRecordFailed = "❌ Failed to record payment. Please try again."

	replyApology = "❌ Sorry, something went wrong. Please try again or contact support."
)

func replyNotRegistered(phone string) string {
	return fmt.Sprintf("❌ Your number (%s) is not registered as a landlord.\n\n"+
		"Please register first or contact support if this is an error.", phone)
}

func replyTenantNotFound(name string) string {
	return fmt.Sprintf("❌ Couldn't find tenant \"%s\".\n\n"+
		"Check spelling or add them to your property first.", name)
}

func replyAmbiguousTenant(name string, candidates []rental.Tenant) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🤔 More than one tenant matches \"%s\":\n", name)
	for i, t := range candidates {
		if i == maxCandidates {
			fmt.Fprintf(&b, "• …and %d more\n", len(candidates)-maxCandidates)
			break
		}
		fmt.Fprintf(&b, "• %s (phone ending %s)\n", t.Name, phoneSuffix(t.Phone))
	}
	fmt.Fprintf(&b, "\nPlease send the message again with the tenant's full name, "+
		"or the name followed by the last digits of their phone, e.g. '%s %s paid 500000'.",
		candidates[0].Name, phoneSuffix(candidates[0].Phone))
	return b.String()
}

// phoneSuffix is the part of a tenant phone shown when names collide
func phoneSuffix(phone string) string {
	digits := rental.NormalizePhone(phone)
	if len(digits) <= 4 {
		return digits
	}
	return digits[len(digits)-4:]
}

func replyPaymentRecorded(amount, currency, tenant string, period rental.Period, tenantPhone string) string {
	return fmt.Sprintf("✅ %s %s recorded for %s (%s).\n📄 Receipt sent to %s.",
		amount, currency, tenant, period, tenantPhone)
}

func replyReceiptFailed(amount, currency, tenant string, period rental.Period) string {
	return fmt.Sprintf("✅ %s %s recorded for %s (%s).\n\n"+
		"⚠️ Receipt generation failed. You can generate it manually from dashboard.",
		amount, currency, tenant, period)
}

func replyPaid(tenant, amount, currency string, period rental.Period, paidOn string) string {
	return fmt.Sprintf("✅ Yes, %s paid %s %s for %s.\n📅 Paid on: %s",
		tenant, amount, currency, period, paidOn)
}

func replyNotPaid(tenant string, period rental.Period) string {
	return fmt.Sprintf("❌ No, %s has not paid for %s yet.", tenant, period)
}
