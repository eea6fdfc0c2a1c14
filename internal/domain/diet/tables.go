package diet

import "slices"

// Range is an inclusive integer range
type Range struct {
	Min int
	Max int
}

// ProteinPolicy restricts which protein categories a disease allows.
// A non-empty Allow list wins over Deny.
type ProteinPolicy struct {
	Allow []Category
	Deny  []Category
}

// Permits reports whether category passes the policy
func (p ProteinPolicy) Permits(category Category) bool {
	if len(p.Allow) > 0 {
		return slices.Contains(p.Allow, category)
	}
	return !slices.Contains(p.Deny, category)
}

// ConstitutionProfile is the user-facing description of a constitution
type ConstitutionProfile struct {
	Type        Constitution `json:"type"`
	Symptoms    string       `json:"symptoms"`
	Recommended string       `json:"recommended"`
	Medicinals  []string     `json:"medicinals"`
}

// Tables holds the static recommendation tables the planner works from.
// A Tables value is read-only once built; accessors return copies.
type Tables struct {
	medicinals             map[Constitution][]string
	constitutionVegetables map[Constitution][]string
	defaultVegetables      []string
	seasonalVegetables     map[Season][]string
	seasonalFruits         map[Season][]string
	commonFruits           []string
	stapleKeywords         map[Slot][]string
	stapleDefaults         map[Slot][]string
	calorieRanges          map[Slot]Range
	fallbackMethods        []string
	fallbackFlavors        []string
	vegetableVerbs         []string
	proteinVerbs           []string
	seasonalVerbs          []string
	soups                  []string
	desserts               []string
	diseasePriority        []Disease
	proteinPolicies        map[Disease]ProteinPolicy
	dietTips               map[Disease]string
	constitutionProfiles   map[Constitution]ConstitutionProfile
}

// DefaultTables builds the standard recommendation tables
func DefaultTables() Tables {
	return Tables{
		medicinals: map[Constitution][]string{
			ConstitutionStomachHeat:      {"荷叶", "栀子", "决明子", "麦芽"},
			ConstitutionPhlegmDamp:       {"茯苓", "薏苡仁", "陈皮", "山楂"},
			ConstitutionQiStagnation:     {"当归", "桃仁", "佛手", "玫瑰花"},
			ConstitutionSpleenDeficiency: {"黄芪", "山药", "白扁豆", "砂仁"},
			ConstitutionSpleenKidneyYang: {"肉桂", "干姜", "芡实", "肉苁蓉"},
		},
		constitutionVegetables: map[Constitution][]string{
			ConstitutionStomachHeat:      {"苦瓜", "黄瓜", "西葫芦", "菠菜", "莴笋"},
			ConstitutionPhlegmDamp:       {"冬瓜", "白萝卜", "青萝卜", "黄花菜", "丝瓜"},
			ConstitutionQiStagnation:     {"茄子", "西红柿", "胡萝卜", "油菜", "芹菜"},
			ConstitutionSpleenDeficiency: {"南瓜", "山药", "红薯", "土豆", "莲藕"},
			ConstitutionSpleenKidneyYang: {"韭菜", "生姜", "洋葱", "香菜", "大葱"},
		},
		defaultVegetables: []string{"菠菜", "西红柿", "青菜"},
		seasonalVegetables: map[Season][]string{
			SeasonSpring: {"春笋", "荠菜", "韭菜", "菠菜", "豌豆"},
			SeasonSummer: {"冬瓜", "丝瓜", "茄子", "黄瓜", "苦瓜"},
			SeasonAutumn: {"白萝卜", "胡萝卜", "山药", "莲藕", "南瓜"},
			SeasonWinter: {"白菜", "芹菜", "菠菜", "大葱", "花椰菜"},
		},
		seasonalFruits: map[Season][]string{
			SeasonSpring: {"草莓", "樱桃", "枇杷", "杨梅"},
			SeasonSummer: {"西瓜", "桃子", "荔枝", "葡萄", "杏"},
			SeasonAutumn: {"苹果", "梨", "柿子", "猕猴桃", "柚子"},
			SeasonWinter: {"橙子", "橘子", "柚子", "香蕉", "火龙果"},
		},
		commonFruits: []string{"苹果", "香蕉", "橙子"},
		stapleKeywords: map[Slot][]string{
			SlotBreakfast: {"粥", "面包", "馒头", "包子", "花卷", "饼", "三明治", "燕麦"},
			SlotLunch:     {"米饭", "面条", "米粉", "意面", "通心粉", "面", "饭"},
			SlotDinner:    {"米饭", "粥", "饭", "薯", "地瓜", "红薯"},
		},
		stapleDefaults: map[Slot][]string{
			SlotBreakfast: {"全麦面包", "燕麦粥", "杂粮粥", "小米粥", "馒头"},
			SlotLunch:     {"杂粮饭", "糙米饭", "全麦面条", "米粉", "荞麦面"},
			SlotDinner:    {"小米饭", "糙米饭", "薏米饭", "藜麦饭", "紫米饭"},
		},
		calorieRanges: map[Slot]Range{
			SlotBreakfast: {Min: 350, Max: 450},
			SlotLunch:     {Min: 500, Max: 600},
			SlotDinner:    {Min: 400, Max: 500},
		},
		fallbackMethods: []string{"炒", "煮", "蒸", "烤", "煎"},
		fallbackFlavors: []string{"鲜", "香", "咸", "甜"},
		vegetableVerbs:  []string{"清炒", "凉拌", "爆炒", "蒸", "炖"},
		proteinVerbs:    []string{"煮", "蒸", "炖", "烤", "煎"},
		seasonalVerbs:   []string{"炒", "炖", "煮", "凉拌"},
		soups:           []string{"清汤", "番茄汤", "紫菜汤", "鸡汤", "排骨汤", "蘑菇汤"},
		desserts:        []string{"水果沙拉", "酸奶", "坚果", "红豆糕", "水果拼盘"},
		diseasePriority: []Disease{DiseaseDiabetes, DiseaseHypertension, DiseaseHyperlipidemia, DiseaseGout},
		proteinPolicies: map[Disease]ProteinPolicy{
			DiseaseDiabetes:       {Allow: []Category{CategoryLegume, CategoryPoultry, CategoryEgg}},
			DiseaseHypertension:   {Deny: []Category{CategoryAquatic}},
			DiseaseHyperlipidemia: {Deny: []Category{CategoryLivestock}},
			DiseaseGout:           {Deny: []Category{CategoryAquatic, CategoryLivestock}},
		},
		dietTips: map[Disease]string{
			DiseaseDiabetes:       "糖尿病提示：已为您减少碳水化合物和高糖食物，增加低GI食物。",
			DiseaseHypertension:   "高血压提示：已为您减少钠盐含量高的食物，增加钾含量丰富的蔬果。",
			DiseaseHyperlipidemia: "高血脂提示：已为您减少动物性脂肪，增加不饱和脂肪酸食物。",
			DiseaseGout:           "痛风提示：已为您减少高嘌呤食物，建议保持充分饮水。",
		},
		constitutionProfiles: map[Constitution]ConstitutionProfile{
			ConstitutionStomachHeat:      {Symptoms: "口干口苦、容易饥饿、大便干结", Recommended: "清热食物如苦瓜、荷叶、绿豆"},
			ConstitutionPhlegmDamp:       {Symptoms: "体重超标、身重困倦、易疲乏", Recommended: "祛湿食物如冬瓜、薏苡仁、茯苓"},
			ConstitutionQiStagnation:     {Symptoms: "胸胁胀满、情绪不稳、经期不调", Recommended: "理气活血食物如玫瑰花、桃仁、当归"},
			ConstitutionSpleenDeficiency: {Symptoms: "食欲不振、腹胀、大便稀溏", Recommended: "健脾食物如山药、白扁豆、大枣"},
			ConstitutionSpleenKidneyYang: {Symptoms: "四肢发冷、腰膝酸软、畏寒怕冷", Recommended: "温补食物如肉桂、干姜、羊肉"},
		},
	}
}

// Medicinals returns the medicinal foods for c; unknown types yield nil
func (t Tables) Medicinals(c Constitution) []string {
	return slices.Clone(t.medicinals[c])
}

// ConstitutionVegetables returns the vegetable fragments for c, or the default list
func (t Tables) ConstitutionVegetables(c Constitution) []string {
	if frags, ok := t.constitutionVegetables[c]; ok {
		return slices.Clone(frags)
	}
	return slices.Clone(t.defaultVegetables)
}

// SeasonalVegetables returns the vegetable fragments for s
func (t Tables) SeasonalVegetables(s Season) []string {
	return slices.Clone(t.seasonalVegetables[s])
}

// SeasonalFruits returns the fruit fragments for s
func (t Tables) SeasonalFruits(s Season) []string {
	return slices.Clone(t.seasonalFruits[s])
}

// CommonFruits are used to top up a thin seasonal fruit list
func (t Tables) CommonFruits() []string {
	return slices.Clone(t.commonFruits)
}

// StapleKeywords returns the name keywords that mark a staple as fitting slot
func (t Tables) StapleKeywords(slot Slot) []string {
	return slices.Clone(t.stapleKeywords[slot])
}

// StapleDefaults returns the fixed staples used to fill a thin pool for slot
func (t Tables) StapleDefaults(slot Slot) []FoodItem {
	names := t.stapleDefaults[slot]
	items := make([]FoodItem, 0, len(names))
	for _, n := range names {
		items = append(items, FoodItem{Name: n, Category: CategoryGrain})
	}
	return items
}

// CalorieRange returns the per-meal calorie range for slot
func (t Tables) CalorieRange(slot Slot) (Range, bool) {
	r, ok := t.calorieRanges[slot]
	return r, ok
}

func (t Tables) FallbackMethods() []string { return slices.Clone(t.fallbackMethods) }
func (t Tables) FallbackFlavors() []string { return slices.Clone(t.fallbackFlavors) }
func (t Tables) VegetableVerbs() []string  { return slices.Clone(t.vegetableVerbs) }
func (t Tables) ProteinVerbs() []string    { return slices.Clone(t.proteinVerbs) }
func (t Tables) SeasonalVerbs() []string   { return slices.Clone(t.seasonalVerbs) }
func (t Tables) Soups() []string           { return slices.Clone(t.soups) }
func (t Tables) Desserts() []string        { return slices.Clone(t.desserts) }

// GoverningDisease returns the single disease whose policy applies to
// diseases, by priority diabetes > hypertension > hyperlipidemia > gout.
func (t Tables) GoverningDisease(diseases []Disease) (Disease, bool) {
	for _, d := range t.diseasePriority {
		if slices.Contains(diseases, d) {
			return d, true
		}
	}
	return DiseaseNone, false
}

// ProteinPolicy returns the restriction that governs diseases
func (t Tables) ProteinPolicy(diseases []Disease) ProteinPolicy {
	d, ok := t.GoverningDisease(diseases)
	if !ok {
		return ProteinPolicy{}
	}
	p := t.proteinPolicies[d]
	return ProteinPolicy{Allow: slices.Clone(p.Allow), Deny: slices.Clone(p.Deny)}
}

// DietTip returns the advice line for the governing disease, if any
func (t Tables) DietTip(diseases []Disease) (string, bool) {
	d, ok := t.GoverningDisease(diseases)
	if !ok {
		return "", false
	}
	tip, ok := t.dietTips[d]
	return tip, ok
}

// ConstitutionProfiles returns every known constitution description
func (t Tables) ConstitutionProfiles() []ConstitutionProfile {
	profiles := make([]ConstitutionProfile, 0, len(t.constitutionProfiles))
	for _, c := range Constitutions() {
		p, ok := t.constitutionProfiles[c]
		if !ok {
			continue
		}
		p.Type = c
		p.Medicinals = t.Medicinals(c)
		profiles = append(profiles, p)
	}
	return profiles
}

// ConstitutionProfile returns the description for c
func (t Tables) ConstitutionProfile(c Constitution) (ConstitutionProfile, bool) {
	p, ok := t.constitutionProfiles[c]
	if !ok {
		return ConstitutionProfile{}, false
	}
	p.Type = c
	p.Medicinals = t.Medicinals(c)
	return p, true
}

// KnownConstitution reports whether c has a medicinal table entry
func (t Tables) KnownConstitution(c Constitution) bool {
	_, ok := t.medicinals[c]
	return ok
}
