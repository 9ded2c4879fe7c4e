package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/esg-advisor/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo companies and documents for local development",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		seeds := []struct {
			company model.Company
			docs    []model.Document
		}{
			{
				company: model.Company{Name: "Green Energy Corp", Ticker: "GEC", Sector: "Utilities", Country: "DE"},
				docs: []model.Document{
					{Kind: model.DocumentKindPDF, Filename: "sustainability-2025.pdf",
						Content: "Green Energy Corp achieved carbon neutrality across scope 1 and 2 emissions, verified by a third-party auditor.",
						Status:  model.DocumentStatusCompleted},
					{Kind: model.DocumentKindURL, URL: "https://example.com/gec-esg",
						Status: model.DocumentStatusCompleted},
				},
			},
			{
				company: model.Company{Name: "Apex Logistics", Ticker: "APX", Sector: "Transportation", Country: "US"},
				docs: []model.Document{
					{Kind: model.DocumentKindCSV, Filename: "fleet-emissions.csv",
						Content: "year,co2_tonnes\n2023,48210\n2024,45107\n2025,41988",
						Status:  model.DocumentStatusCompleted},
				},
			},
			{
				company: model.Company{Name: "Meridian Foods", Ticker: "MRF", Sector: "Consumer Staples", Country: "UK"},
			},
		}

		for _, seed := range seeds {
			company, err := st.CreateCompany(cmd.Context(), seed.company)
			if err != nil {
				return err
			}
			for _, d := range seed.docs {
				d.CompanyID = company.ID
				if _, err := st.CreateDocument(cmd.Context(), d); err != nil {
					return err
				}
			}
			zap.L().Info("seeded company",
				zap.Int64("id", company.ID),
				zap.String("name", company.Name),
				zap.Int("documents", len(seed.docs)),
			)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
