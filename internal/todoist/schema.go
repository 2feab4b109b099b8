package todoist

import "github.com/roach88/todoist-to-sqlite/internal/store"

// Default table names.
const (
	DefaultTasksTable     = "tasks"
	DefaultProjectsTable  = "projects"
	DefaultCompletedTable = "completed_tasks"
)

// TableNames names the local tables. Empty fields take the defaults.
type TableNames struct {
	Tasks     string
	Projects  string
	Completed string
}

// Schema holds the table declarations for one local database.
type Schema struct {
	Tasks     store.Table
	Projects  store.Table
	Completed store.Table
}

// NewSchema declares the tables with their primary and foreign keys.
// Foreign keys point at the configured names, so renamed tables stay linked.
func NewSchema(names TableNames) Schema {
	if names.Tasks == "" {
		names.Tasks = DefaultTasksTable
	}
	if names.Projects == "" {
		names.Projects = DefaultProjectsTable
	}
	if names.Completed == "" {
		names.Completed = DefaultCompletedTable
	}

	return Schema{
		Projects: store.Table{
			Name:       names.Projects,
			PrimaryKey: "id",
			ForeignKeys: []store.ForeignKey{
				{Column: "parent_id", OtherTable: names.Projects, OtherColumn: "id"},
			},
		},
		Tasks: store.Table{
			Name:       names.Tasks,
			PrimaryKey: "id",
			ForeignKeys: []store.ForeignKey{
				{Column: "project_id", OtherTable: names.Projects, OtherColumn: "id"},
				{Column: "parent_id", OtherTable: names.Tasks, OtherColumn: "id"},
			},
		},
		Completed: store.Table{
			Name:       names.Completed,
			PrimaryKey: "id",
			ForeignKeys: []store.ForeignKey{
				{Column: "project_id", OtherTable: names.Projects, OtherColumn: "id"},
				{Column: "task_id", OtherTable: names.Tasks, OtherColumn: "id"},
			},
		},
	}
}
