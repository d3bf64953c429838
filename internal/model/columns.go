package model

// Boolean column groups of the jobs table, in schema order.
var (
	BenefitColumns = []string{
		"work_life_balance", "financial_rewards_and_benefits",
		"health_and_wellbeing", "personal_and_professional_development",
		"workplace_environment_and_culture", "mobility_and_transport",
		"unique_benefits", "community_and_social_initiatives",
	}
	ContractColumns = []string{
		"b2b_contract", "employment_contract", "mandate_contract",
		"substitution_agreement", "work_contract", "agency_agreement",
		"temporary_staffing_agreement", "specific_work_contract",
		"internship_apprenticeship_contract", "temporary_employment_contract",
	}
	LanguageColumns = []string{
		"language_english", "language_german", "language_french",
		"language_spanish", "language_italian", "language_dutch",
		"language_russian", "language_chinese_mandarin",
		"language_japanese", "language_portuguese", "language_swedish",
		"language_danish",
	}
	LevelColumns    = []string{"internship", "junior", "middle", "senior", "lead"}
	WorkTypeColumns = []string{"full_time", "hybrid", "remote"}
)

var leadingColumns = []string{
	"id", "job_title", "core_role", "employer_name", "city", "lat", "long",
	"region", "start_salary", "max_salary", "technologies_used",
	"worker_responsibilities", "job_requirements", "offering", "benefits",
}

var trailingColumns = []string{"upload_id", "expiration", "url", "date_posted"}

// FlagColumns returns every boolean column in schema order.
func FlagColumns() []string {
	var cols []string
	cols = append(cols, BenefitColumns...)
	cols = append(cols, ContractColumns...)
	cols = append(cols, LanguageColumns...)
	cols = append(cols, LevelColumns...)
	cols = append(cols, WorkTypeColumns...)
	return cols
}

// Columns returns the fixed column order of the jobs table.
func Columns() []string {
	var cols []string
	cols = append(cols, leadingColumns...)
	cols = append(cols, FlagColumns()...)
	cols = append(cols, trailingColumns...)
	return cols
}

// IsFlagColumn reports whether name is one of the boolean columns.
func IsFlagColumn(name string) bool {
	for _, c := range FlagColumns() {
		if c == name {
			return true
		}
	}
	return false
}

// Values returns the row in Columns order. Booleans stay bool and the
// expiration is rendered as YYYY-MM-DD.
func (p Posting) Values() []any {
	vals := []any{
		p.ID, p.JobTitle, p.CoreRole, p.EmployerName, p.City, p.Lat, p.Long,
		p.Region, p.StartSalary, p.MaxSalary, p.TechnologiesUsed,
		p.Responsibilities, p.Requirements, p.Offering, p.Benefits,
	}
	for _, c := range FlagColumns() {
		vals = append(vals, p.Flags[c])
	}
	return append(vals, p.UploadID, p.Expiration.Format(DateLayout), p.URL, p.DatePosted)
}

// DateLayout is the storage format of calendar dates.
const DateLayout = "2006-01-02"
