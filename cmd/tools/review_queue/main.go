package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/renen/renen/internal/db"
)

// Prints the most recently evaluated submissions with their latest
// snapshot, for a quick look at the review queue without the API.
func main() {
	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, `
		SELECT s.id, s.status, s.idea_text, latest.total_score, latest.tier, latest.segment_outcome, latest.created_at
		FROM submissions s
		LEFT JOIN LATERAL (
			SELECT total_score, tier, segment_outcome, created_at
			FROM evaluation_snapshots es
			WHERE es.submission_id = s.id
			ORDER BY es.created_at DESC
			LIMIT 1
		) latest ON TRUE
		ORDER BY s.created_at DESC
		LIMIT 20
	`)
	if err != nil {
		log.Fatal(err)
	}
	defer rows.Close()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Status", "Idea", "Score", "Tier", "Outcome", "Evaluated At"})

	for rows.Next() {
		var id, status, idea string
		var score *int
		var tier, outcome *string
		var evaluatedAt *time.Time

		if err := rows.Scan(&id, &status, &idea, &score, &tier, &outcome, &evaluatedAt); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}

		scoreCol, tierCol, outcomeCol, whenCol := "-", "-", "-", "-"
		if score != nil {
			scoreCol = strconv.Itoa(*score)
		}
		if tier != nil {
			tierCol = *tier
		}
		if outcome != nil {
			outcomeCol = *outcome
		}
		if evaluatedAt != nil {
			whenCol = evaluatedAt.Format("Jan 02 15:04")
		}

		if len(idea) > 60 {
			idea = idea[:57] + "..."
		}
		t.AppendRow(table.Row{id[:8], status, idea, scoreCol, tierCol, outcomeCol, whenCol})
	}
	t.Render()
}
