package catalog

const (
	SourceDatabase = "database"
	SourceFile     = "file"
	SourceStorage  = "storage"
)

// Config selects and locates the reference identifier source.
type Config struct {
	// Source is one of database, file or storage.
	Source string `mapstructure:"source" default:"database" validate:"oneof=database file storage"`
	// File is the export path read by the file source.
	File string `mapstructure:"file" default:"var/media-references.txt"`
	// Object is the export key read by the storage source.
	Object string `mapstructure:"object" default:"references/media-gallery.txt"`
}
