package main

import (
	"github.com/spf13/cobra"

	"roster/internal/api"
	"roster/internal/config"
)

func newFacultyCmd(cfg *config.Config, structured *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "faculty",
		Aliases: []string{"faculties"},
		Short:   "Manage faculties",
	}

	cmd.AddCommand(
		newFacultyCreateCmd(cfg, structured),
		newFacultyShowCmd(cfg, structured),
		newFacultyUpdateCmd(cfg, structured),
		newFacultyDeleteCmd(cfg),
		newFacultyListCmd(cfg, structured),
		newFacultyLongestNameCmd(cfg, structured),
		newFacultyStudentsCmd(cfg, structured),
	)
	return cmd
}

type facultyFlags struct {
	name  string
	color string
}

func (f *facultyFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "faculty name")
	cmd.Flags().StringVar(&f.color, "color", "", "faculty color")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("color")
}

func (f *facultyFlags) request() api.FacultyRequest {
	return api.FacultyRequest{Name: f.name, Color: f.color}
}

func newFacultyCreateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var flags facultyFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a faculty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.CreateFaculty(cmd.Context(), flags.request())
				if err != nil {
					return err
				}
				return writeFaculty(resp, *structured)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFacultyShowCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a faculty",
		Args:  requireFacultyID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("faculty", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetFaculty(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeFaculty(resp, *structured)
			})
		},
	}
}

func newFacultyUpdateCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var flags facultyFlags
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a faculty's name and color",
		Args:  requireFacultyID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("faculty", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.UpdateFaculty(cmd.Context(), id, flags.request())
				if err != nil {
					return err
				}
				return writeFaculty(resp, *structured)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func newFacultyDeleteCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a faculty; its students are kept without a faculty",
		Args:  requireFacultyID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("faculty", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				if err := client.DeleteFaculty(cmd.Context(), id); err != nil {
					return err
				}
				return writePlain("deleted faculty %d\n", id)
			})
		},
	}
}

func newFacultyListCmd(cfg *config.Config, structured *bool) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List faculties, optionally matching name or color",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				faculties, err := client.ListFaculties(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(faculties)
				}
				return writeFacultyList(faculties)
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "case-insensitive substring of name or color")
	return cmd
}

func newFacultyLongestNameCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "longest-name",
		Short: "Show the longest faculty name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.LongestFacultyName(cmd.Context())
				if err != nil {
					return err
				}
				if *structured {
					return writeJSON(resp)
				}
				return writePlain("%s\n", resp.Name)
			})
		},
	}
}

func newFacultyStudentsCmd(cfg *config.Config, structured *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "students <id>",
		Short: "List the students of a faculty",
		Args:  requireFacultyID,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("faculty", args[0])
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				students, err := client.FacultyStudents(cmd.Context(), id)
				if err != nil {
					return err
				}
				return writeStudents(students, *structured)
			})
		},
	}
}

func writeFaculty(faculty api.FacultyResponse, structured bool) error {
	if structured {
		return writeJSON(faculty)
	}
	return writeFacultyDetail(faculty)
}
