package main

import (
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/evidentia/docsynth"
	"github.com/evidentia/docsynth/ingestion"
)

type seedDocument struct {
	name  string
	theme string
	text  string
}

var documents = []seedDocument{
	{
		name:  "maternal_health_review.pdf",
		theme: "health",
		text: "The national maternal health review found that skilled birth attendance " +
			"rose from 61 percent to 78 percent over the reporting period. The maternal " +
			"mortality ratio declined in every province, though rural districts continue " +
			"to lag behind urban centers. Antenatal care coverage reached 84 percent of " +
			"pregnant women, driven by community midwife programs and mobile clinics. " +
			"Postnatal follow-up remains the weakest link in the continuum of care, with " +
			"fewer than half of mothers receiving a visit within the first week. The " +
			"review recommends expanding the community midwife cadre and integrating " +
			"postnatal checks into routine immunization contacts.",
	},
	{
		name:  "immunization_annual_report.pdf",
		theme: "health",
		text: "Routine immunization coverage reached 91 percent for the third dose of " +
			"the pentavalent vaccine, exceeding the regional average. Measles vaccination " +
			"coverage stagnated at 82 percent, leaving pockets of susceptible children in " +
			"peri-urban settlements. The dropout rate between the first and third doses " +
			"fell to 6 percent after the introduction of SMS reminders for caregivers. " +
			"Cold chain failures accounted for an estimated 3 percent of wasted doses. " +
			"Supplementary campaigns reached 1.2 million children in hard-to-reach areas, " +
			"but the zero-dose prevalence in nomadic communities remains a concern.",
	},
	{
		name:  "basic_education_sector_plan.pdf",
		theme: "education",
		text: "Net primary enrollment stands at 94 percent, yet the completion rate for " +
			"the primary cycle is only 76 percent. Girls' enrollment now exceeds boys' in " +
			"the first three grades, a reversal of the historical pattern. The " +
			"pupil-teacher ratio improved from 48 to 41 after the recruitment of twelve " +
			"thousand teachers, though deployment remains skewed toward urban schools. " +
			"Learning assessments show that fewer than a third of grade four pupils meet " +
			"the national reading benchmark. The sector plan prioritizes early grade " +
			"reading instruction, school feeding in food-insecure districts, and a " +
			"revised capitation grant formula that weights remote schools more heavily.",
	},
	{
		name:  "water_sanitation_assessment.pdf",
		theme: "infrastructure",
		text: "Access to basic drinking water services rose to 73 percent of households, " +
			"but the safely managed water coverage is far lower at 41 percent. Open " +
			"defecation prevalence fell below 10 percent nationally following the " +
			"community-led total sanitation campaign. Boreholes account for the majority " +
			"of rural supply, and the pump functionality rate of 68 percent points to " +
			"persistent maintenance gaps. Water point committees collect user fees in " +
			"just over half of surveyed villages. The assessment calls for a district " +
			"maintenance fund and professionalized handpump mechanic networks.",
	},
	{
		name:  "nutrition_surveillance_bulletin.pdf",
		theme: "health",
		text: "The national stunting prevalence among children under five declined from " +
			"38 percent to 31 percent over five years. Wasting prevalence remains above " +
			"the emergency threshold in two arid regions, with the global acute " +
			"malnutrition rate peaking during the lean season. Exclusive breastfeeding " +
			"coverage improved to 58 percent following the baby-friendly facility " +
			"initiative. Vitamin A supplementation coverage exceeded 90 percent in " +
			"campaign months but fell sharply between campaigns. Surveillance sites " +
			"report that admission rates to therapeutic feeding programs track rainfall " +
			"deficits with a two-month lag.",
	},
	{
		name:  "gender_equality_progress_report.pdf",
		theme: "governance",
		text: "Women hold 27 percent of parliamentary seats, up from 18 percent at the " +
			"last election, aided by the constitutional quota. The gender parity index " +
			"for secondary enrollment reached 0.94, though completion still favors boys " +
			"in rural provinces. Female labor force participation stands at 54 percent, " +
			"concentrated in informal agriculture and trade. The prevalence of " +
			"intimate partner violence reported in the demographic survey was 29 " +
			"percent, prompting a review of referral services. The report urges " +
			"gender-responsive budgeting across line ministries and expanded childcare " +
			"provision to support formal employment.",
	},
	{
		name:  "rural_electrification_strategy.pdf",
		theme: "infrastructure",
		text: "The national electrification rate reached 47 percent, with grid " +
			"connections concentrated along the main transmission corridors. Off-grid " +
			"solar home systems now serve 1.8 million households, and the mini-grid " +
			"pipeline covers 240 sites at various stages of development. The connection " +
			"charge remains the most cited barrier in household surveys, exceeding a " +
			"month's income for the poorest quintile. Productive use of electricity in " +
			"rural growth centers is rising, led by grain milling and cold storage. The " +
			"strategy targets universal access through a least-cost geospatial plan " +
			"combining grid densification with private mini-grid concessions.",
	},
	{
		name:  "social_protection_evaluation.pdf",
		theme: "governance",
		text: "The unconditional cash transfer program reaches 12 percent of households, " +
			"targeted through a proxy means test with a reported inclusion error of 23 " +
			"percent. Evaluation results show the poverty headcount ratio among " +
			"beneficiaries fell nine percentage points relative to the comparison group. " +
			"School attendance rates improved for children in recipient households, and " +
			"dietary diversity scores rose during the lean season. Payment delays " +
			"averaged six weeks in remote districts before the switch to mobile money. " +
			"The evaluation recommends linking the registry to disaster early warning " +
			"triggers so transfers can scale ahead of droughts.",
	},
}

var seedDir = flag.String("src", "", "directory of .txt documents to seed instead of the built-in corpus")
var seedTheme = flag.String("theme", "general", "theme applied to documents loaded from -src")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// documentsFromDir returns an iterator over .txt files in a directory,
// using each file name as the source document name.
func documentsFromDir(dir, theme string) (iter.Seq[seedDocument], error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	return func(yield func(seedDocument) bool) {
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".txt" {
				continue
			}
			text, err := os.ReadFile(filepath.Join(dir, entry.Name()))
			if err != nil {
				slog.Error("skipping unreadable seed file", "file", entry.Name(), "err", err)
				continue
			}
			doc := seedDocument{name: entry.Name(), theme: theme, text: string(text)}
			if !yield(doc) {
				return
			}
		}
	}, nil
}

// documentsFromSlice returns an iterator over the built-in corpus.
func documentsFromSlice(docs []seedDocument) iter.Seq[seedDocument] {
	return func(yield func(seedDocument) bool) {
		for _, doc := range docs {
			if !yield(doc) {
				return
			}
		}
	}
}

// ingestAll feeds every document from the source iterator through the pipeline.
func ingestAll(ctx context.Context, pipeline *ingestion.Pipeline, source iter.Seq[seedDocument]) error {
	for doc := range source {
		result, err := pipeline.IngestDocument(ctx, doc.name, doc.theme, doc.text)
		if err != nil {
			return err
		}
		slog.Info("seeded document", "name", doc.name, "chunks", result.ChunksAdded)
	}
	return nil
}

func main() {
	db, err := docsynth.NewDatabase("./corpus_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed documents
	var source iter.Seq[seedDocument]
	if seedDir != nil && *seedDir != "" {
		source, err = documentsFromDir(*seedDir, *seedTheme)
		if err != nil {
			panic(err)
		}
	} else {
		source = documentsFromSlice(documents)
	}

	if err := ingestAll(ctx, pipeline, source); err != nil {
		panic(err)
	}
}
