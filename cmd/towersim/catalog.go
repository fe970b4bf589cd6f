package main

import (
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Show buildings, enemies and rounds of a scenario",
	Long: `Print the scenario catalog after the difficulty preset is applied.

Examples:
  towersim catalog
  towersim catalog --difficulty hard
  towersim catalog --scenario ./maps/canyon.yaml`,
	Run: runCatalog,
}

func runCatalog(_ *cobra.Command, _ []string) {
	sc := loadScenario()
	p := message.NewPrinter(language.English)

	p.Printf("Scenario %s: %dx%d map, %d rounds\n", sc.Name, sc.Map.Width, sc.Map.Height, len(sc.Rounds))
	p.Printf("Start with %d money and %d lives, %.0fs preparation, %d%% sell refund\n\n",
		sc.Rules.StartingMoney, sc.Rules.StartingLives, sc.Rules.PreparationTime, sc.Rules.SellRefundPercent)

	p.Printf("Buildings\n")
	p.Printf("  %-3s  %-14s  %-8s  %6s  %6s  %5s  %5s  %6s\n", "", "Type", "Category", "Cost", "Damage", "Range", "Rate", "DPS")
	for _, b := range sc.Buildings {
		marker := ""
		if b.Type == sc.DefaultBuilding {
			marker = "*"
		}
		p.Printf("  %-3s  %-14s  %-8s  %6d  %6.1f  %5.1f  %5.1f  %6.1f\n",
			b.Symbol+marker, b.Type, b.Category, b.Cost, b.Damage, b.Range, b.FireRate, b.DPS())
	}

	p.Printf("\nEnemies\n")
	p.Printf("  %-10s  %7s  %5s  %6s  %6s  %6s\n", "Type", "Health", "Speed", "Bounty", "Points", "Damage")
	for _, e := range sc.Enemies {
		p.Printf("  %-10s  %7.1f  %5.1f  %6d  %6d  %6d\n", e.Type, e.Health, e.Speed, e.Bounty, e.Points, e.Damage)
	}

	p.Printf("\nRounds\n")
	for i, r := range sc.Rounds {
		enemies, bonus := 0, 0
		for _, w := range r.Waves {
			enemies += w.TotalEnemies()
			bonus += w.BonusMoney
		}
		p.Printf("  %d. %-18s  %d waves, %d enemies, %d bonus\n", i+1, r.Name, len(r.Waves), enemies, bonus)
	}
}
