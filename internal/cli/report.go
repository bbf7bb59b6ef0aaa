package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Veraticus/bankpulse/internal/health"
	"github.com/Veraticus/bankpulse/internal/loan"
	"github.com/Veraticus/bankpulse/internal/model"
	"github.com/Veraticus/bankpulse/internal/recurring"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

const dateLayout = "Jan 2, 2006"

// Money formats an amount with two decimals and a leading currency sign.
func Money(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeaderStyle
			}
			return TableCellStyle
		})
}

func writeLines(w io.Writer, lines ...string) error {
	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

// RenderCharges prints detected recurring charges and their monthly cost.
func RenderCharges(w io.Writer, charges []recurring.Charge) error {
	title := FormatTitle(RepeatIcon, "Recurring Charges")
	if len(charges) == 0 {
		return writeLines(w, title, FormatInfo("No recurring charges detected"))
	}

	t := newTable("Merchant", "Average", "Frequency", "Count", "Total Paid", "Last", "Next")
	for _, c := range charges {
		t.Row(
			c.Merchant,
			Money(c.AverageAmount),
			string(c.Frequency),
			strconv.Itoa(c.OccurrenceCount),
			Money(c.TotalPaid),
			c.LastDate.Format(dateLayout),
			c.NextDate.Format(dateLayout),
		)
	}

	s := recurring.Summarize(charges)
	footer := fmt.Sprintf("%d recurring charges, about %s per month (%s per year)",
		s.Count, BoldStyle.Render(Money(s.MonthlyTotal)), Money(s.YearlyTotal))

	return writeLines(w, title, t.String(), SubtleStyle.Render(footer))
}

// RenderLoanSummary prints the fixed payment and total cost of a loan.
func RenderLoanSummary(w io.Writer, principal, annualRatePercent float64, termMonths int, s loan.Summary) error {
	body := strings.Join([]string{
		fmt.Sprintf("Principal:       %s", Money(principal)),
		fmt.Sprintf("Rate:            %s%% APR", decimal.NewFromFloat(annualRatePercent).String()),
		fmt.Sprintf("Term:            %d months", termMonths),
		fmt.Sprintf("Monthly payment: %s", BoldStyle.Render(Money(s.MonthlyPayment))),
		fmt.Sprintf("Total paid:      %s", Money(s.TotalPaid)),
		fmt.Sprintf("Total interest:  %s", Money(s.TotalInterest)),
	}, "\n")
	return writeLines(w, RenderBox(LoanIcon+" Loan Summary", body))
}

// RenderSchedule prints an amortization table.
func RenderSchedule(w io.Writer, schedule []loan.Installment) error {
	t := newTable("#", "Payment", "Principal", "Interest", "Balance")
	for _, inst := range schedule {
		t.Row(
			strconv.Itoa(inst.Number),
			Money(inst.Payment),
			Money(inst.Principal),
			Money(inst.Interest),
			Money(inst.Balance),
		)
	}
	return writeLines(w, t.String())
}

// RenderBreakdown prints how the next payment on a stored loan splits.
func RenderBreakdown(w io.Writer, l model.Loan, payment float64, b loan.Breakdown) error {
	body := strings.Join([]string{
		fmt.Sprintf("Outstanding: %s", Money(l.Balance)),
		fmt.Sprintf("Payment:     %s", Money(payment)),
		fmt.Sprintf("Principal:   %s", SuccessStyle.Render(Money(b.Principal))),
		fmt.Sprintf("Interest:    %s", WarningStyle.Render(Money(b.Interest))),
	}, "\n")
	return writeLines(w, RenderBox(LoanIcon+" "+l.Name+": next payment", body))
}

// RenderLoans lists stored loans.
func RenderLoans(w io.Writer, loans []model.Loan) error {
	title := FormatTitle(LoanIcon, "Loans")
	if len(loans) == 0 {
		return writeLines(w, title, FormatInfo("No loans recorded. Add one with: pulse loan add"))
	}

	t := newTable("ID", "Name", "Principal", "Rate", "Term", "Outstanding")
	for _, l := range loans {
		t.Row(
			l.ID,
			l.Name,
			Money(l.Principal),
			decimal.NewFromFloat(l.AnnualRatePercent).String()+"%",
			strconv.Itoa(l.TermMonths),
			Money(l.Balance),
		)
	}
	footer := fmt.Sprintf("Total outstanding: %s", Money(model.TotalDebt(loans)))
	return writeLines(w, title, t.String(), SubtleStyle.Render(footer))
}

// RenderAccounts lists stored account balances.
func RenderAccounts(w io.Writer, accounts []model.Account) error {
	title := FormatTitle(ChartIcon, "Accounts")
	if len(accounts) == 0 {
		return writeLines(w, title, FormatInfo("No accounts recorded"))
	}

	t := newTable("ID", "Name", "Balance", "Updated")
	for _, a := range accounts {
		t.Row(a.ID, a.Name, Money(a.Balance), a.UpdatedAt.Format(dateLayout))
	}
	footer := fmt.Sprintf("Total balance: %s", Money(model.TotalBalance(accounts)))
	return writeLines(w, title, t.String(), SubtleStyle.Render(footer))
}

// RenderHealth prints the overall score and each factor.
func RenderHealth(w io.Writer, r health.Result) error {
	grade := r.Grade()
	headline := fmt.Sprintf("%s  %s",
		statusStyle(grade).Bold(true).Render(fmt.Sprintf("%d/100", r.Overall)),
		statusStyle(grade).Render(strings.ToUpper(string(grade))))

	t := newTable("Factor", "Score", "Weight", "Status", "Detail")
	for _, f := range r.Factors {
		t.Row(
			f.Name,
			strconv.Itoa(f.Score),
			strconv.Itoa(f.Weight)+"%",
			statusStyle(f.Status).Render(string(f.Status)),
			f.Description,
		)
	}

	period := fmt.Sprintf("%s: income %s, expenses %s",
		r.Period.Format("January 2006"), Money(r.Income), Money(r.Expenses))

	return writeLines(w,
		FormatTitle(PulseIcon, "Financial Health"),
		headline,
		SubtleStyle.Render(period),
		t.String(),
	)
}

func statusStyle(s health.Status) lipgloss.Style {
	switch s {
	case health.StatusExcellent, health.StatusGood:
		return SuccessStyle
	case health.StatusFair:
		return WarningStyle
	default:
		return ErrorStyle
	}
}
