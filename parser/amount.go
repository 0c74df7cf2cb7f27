package parser

// MutezDecimals is the number of decimal places between mutez and XTZ:
// 1 XTZ = 1_000_000 mutez.
const MutezDecimals = 6

// FormatMutez renders a decimal mutez amount (as produced by Num.Decimal)
// as an XTZ amount: six decimals, trailing zeros trimmed (sub-tez values
// are left-padded with "0."; whole amounts such as 1000000 render as "1",
// without a decimal point), suffixed " XTZ".
func FormatMutez(decimalMutez string) string {
	return AdjustDecimal(decimalMutez, MutezDecimals) + " XTZ"
}
