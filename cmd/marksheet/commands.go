package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/stemsi/edutrack-backend/internal/aggregate"
	"github.com/stemsi/edutrack-backend/internal/extraction"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/recognizer"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "marksheet",
		Short: "Offline marksheet extraction and GPA tools",
		Long: `marksheet runs the EduTrack extraction and grade point pipeline without
the server.

Examples:
  marksheet extract scan.txt --confidence 82
  marksheet gpa semesters.json
  marksheet recognize scan.png --url http://localhost:8080`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Float64("threshold", extraction.DefaultConfidenceThreshold, "lowest confidence (0-100) whose text is parsed")

	root.AddCommand(newExtractCmd(), newGPACmd(), newRecognizeCmd())
	return root
}

func newExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [text-file]",
		Short: "Extract header and subjects from recognized text",
		Long:  "Reads recognized marksheet text from a file, or stdin when the file is omitted or \"-\", and prints the extraction result as JSON.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "-"
			if len(args) == 1 {
				name = args[0]
			}
			text, err := readInput(cmd, name)
			if err != nil {
				return err
			}
			confidence, _ := cmd.Flags().GetFloat64("confidence")
			return writeOutcome(cmd, string(text), confidence)
		},
	}
	cmd.Flags().Float64("confidence", 100, "recognition confidence (0-100) of the text")
	return cmd
}

// semesterInput is one entry of the gpa command's input file.
type semesterInput struct {
	Name     string               `json:"name"`
	Subjects []model.SubjectInput `json:"subjects"`
}

type gpaReport struct {
	Semesters []gpaRow `json:"semesters"`
	CGPA      float64  `json:"cgpa"`
	Credits   int      `json:"total_credits"`
}

type gpaRow struct {
	Name     string  `json:"name"`
	SGPA     float64 `json:"sgpa"`
	Credits  int     `json:"credits"`
	Subjects int     `json:"subjects"`
	Band     string  `json:"band"`
}

func newGPACmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gpa <semesters.json>",
		Short: "Compute SGPA per semester and the pooled CGPA",
		Long:  `Reads a JSON array of {"name", "subjects": [{"code","name","credits","grade"}]} and prints each SGPA and the CGPA.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var inputs []semesterInput
			if err := json.Unmarshal(raw, &inputs); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}

			engine := aggregate.NewEngine(nil)
			semesters := make([]model.Semester, len(inputs))
			report := gpaReport{Semesters: make([]gpaRow, len(inputs))}
			for i, in := range inputs {
				sem := model.Semester{Name: in.Name}
				for _, s := range in.Subjects {
					sem.Subjects = append(sem.Subjects, model.SubjectRecord{Code: s.Code, Name: s.Name, Credits: s.Credits, Grade: s.Grade})
				}
				engine.Recompute(&sem)
				semesters[i] = sem
				report.Semesters[i] = gpaRow{
					Name:     sem.Name,
					SGPA:     sem.SGPA,
					Credits:  sem.TotalCredits,
					Subjects: sem.TotalSubjects,
					Band:     aggregate.SGPABand(sem.SGPA),
				}
				report.Credits += sem.TotalCredits
			}
			report.CGPA = engine.CGPA(semesters)

			format, _ := cmd.Flags().GetString("format")
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "SEMESTER\tSGPA\tCREDITS\tSUBJECTS\tBAND")
			for _, row := range report.Semesters {
				fmt.Fprintf(tw, "%s\t%.2f\t%d\t%d\t%s\n", row.Name, row.SGPA, row.Credits, row.Subjects, row.Band)
			}
			fmt.Fprintf(tw, "CGPA\t%.2f\t%d\t\t%s\n", report.CGPA, report.Credits, aggregate.CGPABand(report.CGPA))
			return tw.Flush()
		},
	}
	cmd.Flags().StringP("format", "f", "text", "output format (text, json)")
	return cmd
}

func newRecognizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recognize <image>",
		Short: "Send an image to the OCR server and extract the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			timeout, _ := cmd.Flags().GetDuration("timeout")
			maxWidth, _ := cmd.Flags().GetInt("max-width")
			showText, _ := cmd.Flags().GetBool("text")

			image, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			log := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).Level(zerolog.WarnLevel)
			client := recognizer.NewHTTPRecognizer(url, timeout, maxWidth, log)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			rec, err := client.Recognize(ctx, image)
			if err != nil {
				return err
			}
			if showText {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s\n(confidence %.1f, %d lines)\n", rec.Text, rec.Confidence, rec.Lines)
			}
			return writeOutcome(cmd, rec.Text, rec.Confidence)
		},
	}
	cmd.Flags().String("url", "http://localhost:8080", "base URL of the OCR server")
	cmd.Flags().Duration("timeout", 60*time.Second, "recognition timeout")
	cmd.Flags().Int("max-width", 2400, "downscale wider images to this width (0 keeps size)")
	cmd.Flags().Bool("text", false, "print the recognized text to stderr")
	return cmd
}

// writeOutcome extracts text and prints the outcome, with the SGPA of
// accepted subjects.
func writeOutcome(cmd *cobra.Command, text string, confidence float64) error {
	threshold, _ := cmd.Flags().GetFloat64("threshold")
	extractor := extraction.New(extraction.Config{ConfidenceThreshold: threshold})

	out := extraction.Outcome(extractor.Extract(text, confidence))
	if out.Accepted {
		sgpa := aggregate.NewEngine(nil).SGPA(out.Subjects)
		out.SGPA = &sgpa
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
