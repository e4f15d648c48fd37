package dashboard

// Page and fetch sizes.
const (
	DefaultPageSize         = 50
	TopCustomersLimit       = 10
	RecentTransactionsLimit = 10
	DailyStatsLimit         = 30
	AmountDistributionBins  = 10
	OptionSampleSize        = 100
)

// Filter dropdown values understood by the setters.
const (
	FilterAll        = "All"
	FilterFraudulent = "Fraudulent"
	FilterLegitimate = "Legitimate"
)

// DefaultUseChip is the payment channel preselected in the prediction form.
const DefaultUseChip = "Swipe Transaction"

// USStates seeds the merchant state options.
var USStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY",
}

// CommonMCCCodes seeds the merchant category options.
var CommonMCCCodes = []string{
	"4111", "4814", "5200", "5300", "5311", "5411", "5541",
	"5542", "5812", "5813", "5912", "5999",
}
