package main

import (
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/config"
)

func newStudentCmd(cfg *config.Config, structured *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "student",
		Aliases: []string{"students"},
		Short:   "Manage students",
	}

	cmd.AddCommand(
		newStudentCreateCmd(cfg, structured),
		newStudentShowCmd(cfg, structured),
		newStudentUpdateCmd(cfg, structured),
		newStudentDeleteCmd(cfg),
		newStudentListCmd(cfg, structured),
		newStudentCountCmd(cfg, structured),
		newStudentAverageAgeCmd(cfg, structured),
		newStudentLastFiveCmd(cfg, structured),
		newStudentNamesCmd(cfg, structured),
		newStudentFacultyCmd(cfg, structured),
	)
	return cmd
}

type studentFlags struct {
	name      string
	age       int
	facultyID int64
}

func (f *studentFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "student name")
	cmd.Flags().IntVar(&f.age, "age", 0, "student age")
	cmd.Flags().Int64Var(&f.facultyID, "faculty", 0, "faculty id")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
}

func (f *studentFlags) request(cmd *cobra.Command) api.StudentRequest {
	return api.StudentRequest{
		Name:      f.name,
		Age:       f.age,
		FacultyID: int64FlagPtr(cmd, "faculty", f.facultyID),
	}
}

func newStudentCreateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var flags studentFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a student",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CreateStudent(cmd.Context(), flags.request(cmd))
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writeStudentDetail(resp)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newStudentShowCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a student",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetStudent(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writeStudentDetail(resp)
			})
		},
	}
}

func newStudentUpdateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var flags studentFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a student's name, age and faculty",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.UpdateStudent(cmd.Context(), id, flags.request(cmd))
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writeStudentDetail(resp)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newStudentDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a student and its avatar",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteStudent(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("deleted student %d\n", id)
			})
		},
	}
}

func newStudentListCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var age, minAge, maxAge int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List students, optionally filtered by age or age range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setIntIfChanged(cmd, query, "age", "age", age)
			setIntIfChanged(cmd, query, "min-age", "min_age", minAge)
			setIntIfChanged(cmd, query, "max-age", "max_age", maxAge)
			return withClient(cfg, func(client *api.Client) error {
				students, err := client.ListStudents(cmd.Context(), query)
				if err != nil {
					return err
				}
				return writeStudents(students, *structured)
			})
		},
	}
	cmd.Flags().IntVar(&age, "age", 0, "exact age")
	cmd.Flags().IntVar(&minAge, "min-age", 0, "minimum age, inclusive (requires --max-age)")
	cmd.Flags().IntVar(&maxAge, "max-age", 0, "maximum age, inclusive (requires --min-age)")
	cmd.MarkFlagsRequiredTogether("min-age", "max-age")
	cmd.MarkFlagsMutuallyExclusive("age", "min-age")
	return cmd
}

func newStudentCountCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Count students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CountStudents(cmd.Context())
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writePlain("%d\n", resp.Count)
			})
		},
	}
}

func newStudentAverageAgeCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "average-age",
		Short: "Show the average student age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.AverageAge(cmd.Context())
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writePlain("%.2f\n", resp.AverageAge)
			})
		},
	}
}

func newStudentLastFiveCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "last-five",
		Short: "List the five most recently created students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				students, err := client.LastFiveStudents(cmd.Context())
				if err != nil {
					return err
				}
				return writeStudents(students, *structured)
			})
		},
	}
}

func newStudentNamesCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "names <prefix>",
		Short: "List upper-cased student names starting with prefix",
		Args:  requireExactlyArgs(1, "name prefix is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.StudentNames(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp.Names)
				}
				if len(resp.Names) == 0 {
					return nil
				}
				return writePlain("%s\n", strings.Join(resp.Names, "\n"))
			})
		},
	}
}

func newStudentFacultyCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "faculty <id>",
		Short: "Show the faculty a student belongs to",
		Args:  requireStudentID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("student", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.StudentFaculty(cmd.Context(), id)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writeFacultyDetail(resp)
			})
		},
	}
}

func writeStudents(students []api.StudentResponse, structured bool) error {
	if structured {
		return writeJSON(students)
	}
	return writeStudentList(students)
}
