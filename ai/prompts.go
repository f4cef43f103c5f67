package ai

import (
	"fmt"
	"strings"

	"gripinvest/models"
)

func passwordPrompt(password string) string {
	return `Classify the strength of this password as "Weak", "Medium", or "Strong" and provide a brief suggestion for improvement (e.g., "Add special characters"): ` +
		password + `. Respond only with the classification and suggestion, no conversational filler.`
}

func describePrompt(p ProductDetails) string {
	return fmt.Sprintf(`Generate a concise and engaging investment product description based on the following details:
Name: %s
Type: %s
Tenure: %d months
Annual Yield: %s%%
Risk Level: %s

Focus on benefits for the investor. Keep it under 100 words.`,
		p.Name, p.InvestmentType, p.TenureMonths, p.AnnualYield, p.RiskLevel)
}

func recommendPrompt(risk models.RiskLevel, products []models.Product, investments []models.Investment) string {
	var catalog strings.Builder
	for _, p := range products {
		fmt.Fprintf(&catalog, "- ID: %s, Name: %s (Risk: %s, Yield: %s%%)\n", p.ID, p.Name, p.RiskLevel, p.AnnualYield)
	}

	holdings := "None"
	if len(investments) > 0 {
		var b strings.Builder
		for _, inv := range investments {
			name := inv.ProductID
			if inv.Product != nil {
				name = inv.Product.Name
			}
			fmt.Fprintf(&b, "- %s (%s)\n", name, inv.Amount)
		}
		holdings = strings.TrimRight(b.String(), "\n")
	}

	return fmt.Sprintf(`You are an expert financial advisor for Grip Invest.
A user with a '%s' risk appetite is looking for investment recommendations.

Here is the user's current portfolio:
%s

Here are the available products they can invest in:
%s
Please recommend 3 to 5 products that would be a good fit for their risk appetite and would help diversify their portfolio. For each recommendation, provide the product ID, product name, a compelling reason why it's a good choice for this specific user, and the expected annual yield.

Return your response as a valid JSON array, where each object has the following keys: "productId", "productName", "reason", "annualYield". Do not include any text outside of the JSON array.

Example format:
[
  {
    "productId": "a1b2c3d4-e5f6-a7b8-c9d0-e1f2a3b4c5d6",
    "productName": "Stable Bond Fund",
    "reason": "This fund aligns with your low-risk appetite and provides stable returns. It's a great way to balance your portfolio.",
    "annualYield": "6.00%%"
  }
]`, risk, holdings, catalog.String())
}

func riskPrompt(p PortfolioSnapshot) string {
	var b strings.Builder
	for _, inv := range p.Investments {
		if inv.Product == nil {
			continue
		}
		fmt.Fprintf(&b, "- Product: %s, Type: %s, Amount: %s, Risk: %s\n",
			inv.Product.Name, inv.Product.InvestmentType, inv.Amount, inv.Product.RiskLevel)
	}

	return fmt.Sprintf(`Analyze the following investment portfolio and provide a concise summary of the user's risk exposure. Highlight any potential areas of concern or diversification opportunities.

Portfolio Summary:
Total Invested: %s
Total Expected Return: %s
Number of Investments: %d

Investments:
%s
Risk Exposure Summary:`, p.TotalInvested, p.TotalExpectedReturn, p.NumberOfInvestments, b.String())
}

func errorPrompt(message string) string {
	return `Summarize the following error message concisely, identifying the core issue if possible. Keep the summary under 50 words.

Error Message:
` + message + `

Summary:`
}
