package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmeshcher/selfdispatch-system/internal/model"
)

func claimsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "claims",
		Short: "Work with service claims",
	}
	cmd.AddCommand(claimsListCmd(), claimsCreateCmd())
	return cmd
}

func claimsListCmd() *cobra.Command {
	var filterUser string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List claims visible to the technician",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				claims []model.Claim
				err    error
			)
			if filterUser != "" {
				claims, err = sess.ApplyFilter(cmd.Context(), filterUser)
			} else {
				claims, err = sess.RefreshClaims(cmd.Context())
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CLAIM ID\tSTATUS\tSERVICE TAG\tCREATED\tCREATED BY\tDESCRIPTION")
			for _, c := range claims {
				created := ""
				if !c.CreatedDate.IsZero() {
					created = c.CreatedDate.Format(time.DateOnly)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					c.ClaimID, c.Status, c.ServiceTag, created, c.CreatedBy, c.Description)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&filterUser, "user", "", "server-side filter by username")
	return cmd
}

func claimsCreateCmd() *cobra.Command {
	req := &model.CreateClaimRequest{}
	var (
		images       []string
		descriptions []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a new claim with optional image attachments",
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, path := range images {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image %s: %w", path, err)
				}
				att := model.Attachment{
					FileName: filepath.Base(path),
					Data:     data,
				}
				if i < len(descriptions) {
					att.Description = descriptions[i]
				}
				req.Attachments = append(req.Attachments, att)
			}

			claim, err := sess.CreateClaim(cmd.Context(), req)
			if err != nil {
				return err
			}

			fmt.Printf("Claim %s created, status %s\n", claim.ClaimID, claim.Status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.ServiceTag, "service-tag", "", "service tag or serial of the unit")
	f.StringVar(&req.Description, "description", "", "problem description")
	f.StringVar(&req.PartNumber, "part-number", "", "failed part number")
	f.StringVar(&req.SerialNumber, "serial-number", "", "failed part serial number")
	f.StringVar(&req.IssueCategory, "issue-category", "", "issue category")
	f.StringVar(&req.TechEmail, "tech-email", "", "technician email")
	f.StringVar(&req.PrimaryContactName, "contact-name", "", "primary contact name")
	f.StringVar(&req.PrimaryContactPhone, "contact-phone", "", "primary contact phone")
	f.StringVar(&req.TroubleshootingNotes, "notes", "", "troubleshooting notes")
	f.StringVar(&req.ReferencePO, "reference-po", "", "reference PO number")
	f.BoolVar(&req.OnSiteTechnician, "on-site", false, "request on-site technician")
	f.StringArrayVar(&images, "image", nil, "image file to attach, may repeat")
	f.StringArrayVar(&descriptions, "image-description", nil, "description for the image at the same position")

	_ = cmd.MarkFlagRequired("service-tag")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}
