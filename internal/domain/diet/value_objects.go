package diet

// Value Objects - the closed vocabularies a profile and the catalog are expressed in.
// Wire values are the Chinese labels used by the food catalog.

// Constitution is a TCM body-constitution type
type Constitution string

const (
	ConstitutionStomachHeat      Constitution = "胃热火郁"
	ConstitutionPhlegmDamp       Constitution = "痰湿内盛"
	ConstitutionQiStagnation     Constitution = "气郁血瘀"
	ConstitutionSpleenDeficiency Constitution = "脾虚不运"
	ConstitutionSpleenKidneyYang Constitution = "脾肾阳虚"
)

// Constitutions lists the known constitution types in display order
func Constitutions() []Constitution {
	return []Constitution{
		ConstitutionStomachHeat,
		ConstitutionPhlegmDamp,
		ConstitutionQiStagnation,
		ConstitutionSpleenDeficiency,
		ConstitutionSpleenKidneyYang,
	}
}

// Gender used by the BMR formula
type Gender string

const (
	GenderMale   Gender = "男"
	GenderFemale Gender = "女"
)

// ActivityLevel is the daily physical activity level
type ActivityLevel string

const (
	ActivityLow    ActivityLevel = "轻体力"
	ActivityMedium ActivityLevel = "中等体力"
	ActivityHigh   ActivityLevel = "重体力"
)

// Disease is a chronic condition that restricts protein choices
type Disease string

const (
	DiseaseHypertension   Disease = "高血压"
	DiseaseDiabetes       Disease = "糖尿病"
	DiseaseHyperlipidemia Disease = "高血脂"
	DiseaseGout           Disease = "痛风"
	DiseaseNone           Disease = "无"
)

// Cuisine is a regional Chinese cuisine
type Cuisine string

const (
	CuisineCantonese Cuisine = "粤菜"
	CuisineSichuan   Cuisine = "川菜"
	CuisineHunan     Cuisine = "湘菜"
	CuisineShandong  Cuisine = "鲁菜"
	CuisineJiangsu   Cuisine = "苏菜"
	CuisineZhejiang  Cuisine = "浙菜"
	CuisineFujian    Cuisine = "闽菜"
	CuisineAnhui     Cuisine = "徽菜"
)

// Cuisines lists the supported cuisines
func Cuisines() []Cuisine {
	return []Cuisine{
		CuisineCantonese, CuisineSichuan, CuisineHunan, CuisineShandong,
		CuisineJiangsu, CuisineZhejiang, CuisineFujian, CuisineAnhui,
	}
}

// Season of the year
type Season string

const (
	SeasonSpring Season = "春季"
	SeasonSummer Season = "夏季"
	SeasonAutumn Season = "秋季"
	SeasonWinter Season = "冬季"
)

// Seasons lists the four seasons
func Seasons() []Season {
	return []Season{SeasonSpring, SeasonSummer, SeasonAutumn, SeasonWinter}
}

// Slot is one of the three meals of a day
type Slot string

const (
	SlotBreakfast Slot = "早餐"
	SlotLunch     Slot = "午餐"
	SlotDinner    Slot = "晚餐"
)

// Slots returns the meal slots in serving order
func Slots() []Slot {
	return []Slot{SlotBreakfast, SlotLunch, SlotDinner}
}

// Valid reports whether s is one of the three meal slots
func (s Slot) Valid() bool {
	return s == SlotBreakfast || s == SlotLunch || s == SlotDinner
}

// Category is the catalog's food type tag
type Category string

const (
	CategoryGrain      Category = "谷类"
	CategoryTuber      Category = "薯类"
	CategoryLegume     Category = "豆类"
	CategoryLivestock  Category = "畜肉"
	CategoryPoultry    Category = "禽肉"
	CategoryEgg        Category = "蛋类"
	CategoryAquatic    Category = "河海鲜"
	CategoryVegetable  Category = "蔬菜"
	CategoryFungus     Category = "菌类"
	CategoryAlgae      Category = "藻类"
	CategoryFruit      Category = "水果"
	CategoryNut        Category = "坚果"
	CategorySeasoning  Category = "调味品类"
	CategoryOil        Category = "油类"
	CategoryTea        Category = "茶类"
	CategoryAlcohol    Category = "酒类"
	CategorySnackDrink Category = "零食饮料"
	CategoryOther      Category = "其他"
)

// ProteinCategories is the pool the protein dish is drawn from
func ProteinCategories() []Category {
	return []Category{CategoryLegume, CategoryLivestock, CategoryPoultry, CategoryEgg, CategoryAquatic}
}

// StapleCategories is the pool staples are drawn from
func StapleCategories() []Category {
	return []Category{CategoryGrain, CategoryTuber}
}

// Role groups catalog categories by what they contribute to a meal
type Role string

const (
	RoleStaple    Role = "主食"
	RoleProtein   Role = "蛋白质"
	RoleVegetable Role = "蔬菜"
	RoleFruit     Role = "水果"
	RoleNut       Role = "坚果"
	RoleSeasoning Role = "调味品"
	RoleBeverage  Role = "饮品"
)

// BMIBand classifies a BMI value
type BMIBand string

const (
	BMIBandUnderweight BMIBand = "偏低"
	BMIBandNormal      BMIBand = "正常"
	BMIBandOverweight  BMIBand = "超重"
	BMIBandObese       BMIBand = "肥胖"
)
