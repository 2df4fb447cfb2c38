package resolve

// DefaultFragments returns the curated GBFS location fragment table.
// Order matters: more specific fragments precede generic ones.
func DefaultFragments() []Fragment {
	return []Fragment{
		{"new york", "35620"}, {"nyc", "35620"}, {"jersey city", "35620"},
		{"los angeles", "31080"}, {"la ", "31080"}, {"santa monica", "31080"},
		{"chicago", "16980"},
		{"dallas", "19100"}, {"fort worth", "19100"},
		{"houston", "26420"},
		{"washington", "47900"}, {"arlington, va", "47900"}, {"dc", "47900"},
		{"miami", "33100"}, {"fort lauderdale", "33100"},
		{"philadelphia", "37980"},
		{"atlanta", "12060"},
		{"boston", "14460"}, {"cambridge", "14460"},
		{"phoenix", "38060"}, {"tempe", "38060"}, {"mesa", "38060"},
		{"san francisco", "41860"}, {"oakland", "41860"}, {"berkeley", "41860"},
		{"riverside", "40140"}, {"san bernardino", "40140"},
		{"detroit", "19820"},
		{"seattle", "42660"},
		{"minneapolis", "33460"}, {"st. paul", "33460"},
		{"san diego", "41740"},
		{"tampa", "45300"}, {"st. petersburg", "45300"},
		{"denver", "19740"},
		{"st. louis", "41180"},
		{"baltimore", "12580"},
		{"orlando", "36740"},
		{"charlotte", "16740"},
		{"san antonio", "41700"},
		{"portland", "38900"},
		{"sacramento", "40900"},
		{"pittsburgh", "38300"},
		{"austin", "12420"},
		{"kansas city", "28140"},
		{"cleveland", "17460"},
		{"columbus", "18140"},
		{"indianapolis", "26900"},
		{"las vegas", "29820"},
		{"nashville", "34980"},
		{"norfolk", "47260"},
		{"providence", "39300"},
		{"milwaukee", "33340"},
		{"salt lake", "41620"},
		{"tucson", "46060"},
		{"omaha", "36540"},
		{"raleigh", "39580"},
		{"boise", "14260"},
		{"albuquerque", "10740"},
		{"el paso", "21340"},
		{"spokane", "44060"},
		{"fargo", "22020"},
		{"lincoln, ne", "30700"},
		{"oklahoma city", "36420"},
	}
}
