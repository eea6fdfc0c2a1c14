package diet

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DaysPerWeek is the length of a plan
const DaysPerWeek = 7

// MacroRatio is a meal's macronutrient split in whole percent
type MacroRatio struct {
	Carbs   int `json:"carbs"`
	Protein int `json:"protein"`
	Fat     int `json:"fat"`
}

// Sum is always 100 for ratios built by NewMacroRatio
func (m MacroRatio) Sum() int {
	return m.Carbs + m.Protein + m.Fat
}

// String formats the ratio the way it is shown to users
func (m MacroRatio) String() string {
	return fmt.Sprintf("碳水%d%% 蛋白%d%% 脂肪%d%%", m.Carbs, m.Protein, m.Fat)
}

// ParseMacroRatio reads back the format produced by String
func ParseMacroRatio(s string) (MacroRatio, error) {
	var m MacroRatio
	if _, err := fmt.Sscanf(s, "碳水%d%% 蛋白%d%% 脂肪%d%%", &m.Carbs, &m.Protein, &m.Fat); err != nil {
		return MacroRatio{}, fmt.Errorf("parse macro ratio %q: %w", s, err)
	}
	return m, nil
}

// NewMacroRatio derives fat as the remainder so the three always sum to 100
func NewMacroRatio(carbs, protein int) MacroRatio {
	return MacroRatio{Carbs: carbs, Protein: protein, Fat: 100 - carbs - protein}
}

// Meal is one assembled meal; immutable once produced
type Meal struct {
	Staple   string     `json:"主食"`
	Dishes   []string   `json:"菜品"`
	Calories string     `json:"热量"`
	Macros   MacroRatio `json:"-"`
}

// MarshalJSON adds the formatted macro string next to the other fields
func (m Meal) MarshalJSON() ([]byte, error) {
	type alias Meal
	return json.Marshal(struct {
		alias
		Nutrients string `json:"营养素"`
	}{alias: alias(m), Nutrients: m.Macros.String()})
}

// UnmarshalJSON accepts the shape written by MarshalJSON
func (m *Meal) UnmarshalJSON(data []byte) error {
	type alias Meal
	aux := struct {
		*alias
		Nutrients string `json:"营养素"`
	}{alias: (*alias)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Nutrients == "" {
		return nil
	}
	macros, err := ParseMacroRatio(aux.Nutrients)
	if err != nil {
		return err
	}
	m.Macros = macros
	return nil
}

// DayMenu holds the three meals of one day
type DayMenu struct {
	Day   int
	Meals map[Slot]Meal
}

// Meal returns the meal for slot
func (d DayMenu) Meal(slot Slot) (Meal, error) {
	m, ok := d.Meals[slot]
	if !ok {
		return Meal{}, fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
	}
	return m, nil
}

// WeeklyMenu is the ordered Day1..Day7 plan
type WeeklyMenu struct {
	Days []DayMenu
}

// DayKey formats the label for day n
func DayKey(n int) string {
	return fmt.Sprintf("Day%d", n)
}

// Day returns day n (1-based)
func (w WeeklyMenu) Day(n int) (DayMenu, error) {
	if n < 1 || n > len(w.Days) {
		return DayMenu{}, fmt.Errorf("%w: got %d", ErrUnknownDay, n)
	}
	return w.Days[n-1], nil
}

// Meals returns all meals in day and slot order
func (w WeeklyMenu) Meals() []Meal {
	meals := make([]Meal, 0, len(w.Days)*len(Slots()))
	for _, d := range w.Days {
		for _, slot := range Slots() {
			if m, ok := d.Meals[slot]; ok {
				meals = append(meals, m)
			}
		}
	}
	return meals
}

// MarshalJSON renders {"Day1": {"早餐": {...}, "午餐": {...}, "晚餐": {...}}, ...}
// with day and slot order preserved.
func (w WeeklyMenu) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, d := range w.Days {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(DayKey(d.Day))
		buf.Write(key)
		buf.WriteString(":{")
		first := true
		for _, slot := range Slots() {
			meal, ok := d.Meals[slot]
			if !ok {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			slotKey, _ := json.Marshal(string(slot))
			body, err := json.Marshal(meal)
			if err != nil {
				return nil, err
			}
			buf.Write(slotKey)
			buf.WriteByte(':')
			buf.Write(body)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts the shape written by MarshalJSON. Days must be
// numbered consecutively from Day1.
func (w *WeeklyMenu) UnmarshalJSON(data []byte) error {
	var raw map[string]map[Slot]Meal
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	days := make([]DayMenu, 0, len(raw))
	for n := 1; n <= len(raw); n++ {
		meals, ok := raw[DayKey(n)]
		if !ok {
			return fmt.Errorf("%w: missing %s", ErrUnknownDay, DayKey(n))
		}
		for slot := range meals {
			if !slot.Valid() {
				return fmt.Errorf("%w: %q", ErrUnknownSlot, slot)
			}
		}
		days = append(days, DayMenu{Day: n, Meals: meals})
	}
	w.Days = days
	return nil
}
