package services

import (
	"strings"

	"spesa/internal/core"
)

// ExpenseInput holds the user-editable expense fields.
type ExpenseInput struct {
	Date   core.Date
	Amount core.Money
	Item   string
}

// ParseExpenseInput validates raw form values.
func ParseExpenseInput(date, amount, item string) (ExpenseInput, error) {
	d, err := core.ParseDate(date)
	if err != nil {
		return ExpenseInput{}, err
	}
	m, err := core.ParseAmount(amount)
	if err != nil {
		return ExpenseInput{}, err
	}
	in := ExpenseInput{Date: d, Amount: m, Item: item}
	if err := in.expense(0, 0).Validate(); err != nil {
		return ExpenseInput{}, err
	}
	return in, nil
}

func (in ExpenseInput) expense(id, categoryID int64) core.Expense {
	return core.Expense{
		ID:         id,
		Date:       in.Date,
		Amount:     in.Amount,
		Item:       strings.TrimSpace(in.Item),
		CategoryID: categoryID,
	}
}
