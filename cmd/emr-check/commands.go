package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/afmhelaluddin77/EMR/internal/emr"
	"github.com/afmhelaluddin77/EMR/internal/fhir/r4"
	"github.com/afmhelaluddin77/EMR/internal/intake"
	"github.com/afmhelaluddin77/EMR/internal/vitals"
)

// outcomeLine is one line of validate and extension output.
type outcomeLine struct {
	Source  string               `json:"source"`
	Kind    string               `json:"kind,omitempty"`
	Valid   bool                 `json:"valid"`
	Outcome *r4.OperationOutcome `json:"outcome,omitempty"`
	Error   string               `json:"error,omitempty"`
}

func (a *app) validateCmd() *cobra.Command {
	var (
		kind   string
		ndjson bool
	)
	cmd := &cobra.Command{
		Use:   "validate [files...|-]",
		Short: "Validate resource payloads and print an OperationOutcome per payload",
		Long: `Validate reads one resource per file, or one per line with --ndjson.
With no files, or "-", it reads standard input. Without --kind the kind is
taken from each payload's resourceType.

Exit status is 1 when any payload has violations and 2 when any payload
could not be validated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var forced r4.ResourceKind
			if kind != "" {
				k, err := r4.ParseResourceKind(kind)
				if err != nil {
					return err
				}
				forced = k
			}

			payloads, err := readPayloads(a.stdin, args, ndjson)
			if err != nil {
				return err
			}

			items := make([]intake.Item, len(payloads))
			for i, p := range payloads {
				k := forced
				if k == "" {
					k = sniffKind(p.data)
				}
				items[i] = intake.Item{ID: p.source, Kind: k, Payload: p.data}
			}

			results, err := a.service.ValidateBatch(cmd.Context(), items)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(a.stdout)
			invalid := 0
			for i, r := range results {
				line := outcomeLine{Source: r.ID, Kind: string(items[i].Kind)}
				switch {
				case r.Err != nil:
					line.Error = r.Err.Error()
					a.raise(exitPrecondition)
				default:
					line.Valid = r.Result.Valid()
					line.Outcome = r.Result.ToOperationOutcome()
					if !line.Valid {
						invalid++
						a.raise(exitInvalid)
					}
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
			}
			a.logger.Info("validation finished",
				zap.Int("payloads", len(results)),
				zap.Int("invalid", invalid))
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "resource kind (Appointment, Medication, MedicationRequest, Practitioner)")
	cmd.Flags().BoolVar(&ndjson, "ndjson", false, "read one payload per line")
	cmd.Flags().Bool("require-id", false, "report a missing resource id")
	return cmd
}

// sniffKind returns the payload's resourceType, or "" when it has none.
func sniffKind(data []byte) r4.ResourceKind {
	var head struct {
		ResourceType string `json:"resourceType"`
	}
	_ = json.Unmarshal(data, &head)
	return r4.ResourceKind(head.ResourceType)
}

// classifyOutput is the JSON printed by classify.
type classifyOutput struct {
	ReadingID string        `json:"readingId,omitempty"`
	PatientID string        `json:"patientId,omitempty"`
	Worst     string        `json:"worst"`
	Channels  vitals.Result `json:"channels"`
}

func (a *app) classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify current.json [previous.json]",
		Short: "Classify a vital-sign reading, with trends against a previous one",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var current vitals.Reading
			if err := readJSONFile(a.stdin, args[0], &current); err != nil {
				return err
			}
			var previous *vitals.Reading
			if len(args) == 2 {
				previous = &vitals.Reading{}
				if err := readJSONFile(a.stdin, args[1], previous); err != nil {
					return err
				}
			}

			result := a.service.ClassifyVitals(cmd.Context(), current, previous)
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(classifyOutput{
				ReadingID: current.ID,
				PatientID: current.PatientID,
				Worst:     string(result.Worst()),
				Channels:  result,
			})
		},
	}
	cmd.Flags().Bool("derived-bmi", false, "derive BMI from height and weight when absent")
	return cmd
}

// orphanLine reports extensions whose appointment was not supplied.
type orphanLine struct {
	Orphans []string `json:"orphans"`
}

func (a *app) extensionCmd() *cobra.Command {
	var appointmentsPath string
	cmd := &cobra.Command{
		Use:   "extension ext.json",
		Short: "Validate EMR appointment extensions and report orphans",
		Long: `Extension validates the extension records in a file holding one JSON
object or an array of them. With --appointments, a file of Appointment
resources (one per line), it also lists extensions whose appointment is
not among them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exts, err := readExtensions(a.stdin, args[0])
			if err != nil {
				return err
			}

			idx := emr.NewIndex()
			enc := json.NewEncoder(a.stdout)
			for i := range exts {
				ext := &exts[i]
				res := a.service.ValidateExtension(cmd.Context(), ext)
				line := outcomeLine{
					Source:  fmt.Sprintf("%s[%d]", args[0], i),
					Kind:    "AppointmentExtension",
					Valid:   res.Valid(),
					Outcome: res.ToOperationOutcome(),
				}
				if !line.Valid {
					a.raise(exitInvalid)
				}
				if err := enc.Encode(line); err != nil {
					return err
				}
				if err := idx.Put(*ext); err != nil {
					a.logger.Debug("extension not indexed", zap.Int("index", i), zap.Error(err))
				}
			}

			if appointmentsPath == "" {
				return nil
			}
			ids, err := readAppointmentIDs(appointmentsPath)
			if err != nil {
				return err
			}
			orphans := idx.Orphans(ids)
			if orphans == nil {
				orphans = []string{}
			}
			if len(orphans) > 0 {
				a.logger.Warn("orphaned extensions", zap.Strings("appointment_ids", orphans))
			}
			return enc.Encode(orphanLine{Orphans: orphans})
		},
	}
	cmd.Flags().StringVar(&appointmentsPath, "appointments", "", "NDJSON file of Appointment resources")
	return cmd
}
