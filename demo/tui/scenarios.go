package tui

// Reference texts: a document split into numbered parts, and pieces cut from it.
const (
	sourceText  = "第一部分：介绍。第二部分：方法。第三部分：实验。第五部分：讨论。第六部分：结论。"
	firstPart   = "第一部分：介绍。"
	middlePart  = "第三部分：实验。"
	lastPart    = "第六部分：结论。"
	unrelated   = "这是一个完全不同的内容。"
	threeJoined = "第一部分：介绍。第三部分：实验。第六部分：结论。"
)

// demoMinSampleLength lets the quick strategy probe texts this short.
const demoMinSampleLength = 2

// Scenario is one comparison shown in the demo table.
type Scenario struct {
	Name     string
	Short    string
	Long     string
	Expected bool // expected quick-strategy answer
}

// Scenarios returns the reference comparisons in display order.
func Scenarios() []Scenario {
	return []Scenario{
		{"First fragment", firstPart, sourceText, true},
		{"Middle fragment", middlePart, sourceText, true},
		{"Last fragment", lastPart, sourceText, true},
		{"Three fragments", threeJoined, sourceText, true},
		{"Three concatenated", firstPart + middlePart + lastPart, sourceText, true},
		{"First + middle", firstPart + middlePart, sourceText, true},
		{"First + last", firstPart + lastPart, sourceText, true},
		{"Middle + last", middlePart + lastPart, sourceText, true},
		{"Unrelated text", unrelated, sourceText, false},
	}
}
