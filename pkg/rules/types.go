package rules

// Agency is the operator the rule tables describe
type Agency struct {
	Name      string `yaml:"Name" validate:"required"`
	Color     string `yaml:"Color" validate:"required,hexadecimal,len=6"`
	RouteType int    `yaml:"RouteType" validate:"gte=0"`
}

// Line is the identity of one rail line: every raw feed alias that refers to
// it plus its canonical presentation.
type Line struct {
	RouteID     int64    `yaml:"RouteID" validate:"required,gt=0"`
	Identifiers []string `yaml:"Identifiers" validate:"required,min=1,dive,required"`

	ShortName string `yaml:"ShortName" validate:"required"`
	LongName  string `yaml:"LongName" validate:"required"`
	Color     string `yaml:"Color" validate:"required,hexadecimal,len=6"`
}

// DirectionSet lists every headsign variant that is allowed to collapse into
// Label for one line and direction.
type DirectionSet struct {
	Line      string   `yaml:"Line" validate:"required"`
	Direction int      `yaml:"Direction" validate:"oneof=0 1"`
	Label     string   `yaml:"Label" validate:"required"`
	Synonyms  []string `yaml:"Synonyms" validate:"required,min=1,dive,required"`
}

// Contraction is a literal replacement applied to headsigns and stop names
type Contraction struct {
	Match   string `yaml:"Match" validate:"required"`
	Replace string `yaml:"Replace" validate:"required"`
}

// Document is one YAML document in the rules directory. Any section may be
// left out; the sections of every document are combined by Build.
type Document struct {
	Agency *Agency `yaml:"Agency"`

	Lines      []*Line         `yaml:"Lines" validate:"dive"`
	Directions []*DirectionSet `yaml:"Directions" validate:"dive"`

	Contractions []Contraction `yaml:"Contractions" validate:"dive"`
	Acronyms     []string      `yaml:"Acronyms" validate:"dive,required,alphanum"`
	BrandWords   []string      `yaml:"BrandWords" validate:"dive,required"`
}
