package cli

import (
	"github.com/spf13/cobra"

	"github.com/novainsilico/jinkoctl/pkg/jinko"
)

// metaFlags holds the project-item metadata flags shared by all upload
// commands.
type metaFlags struct {
	name        string
	description string
	folderID    string
	versionName string
}

func (m *metaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&m.name, "name", "", "Item name shown in the project tree")
	cmd.Flags().StringVar(&m.description, "description", "", "Item description")
	cmd.Flags().StringVar(&m.folderID, "folder", "", "Folder UUID to place the item in")
	cmd.Flags().StringVar(&m.versionName, "version-name", "", "Version label for the new snapshot")
}

// meta returns the ItemMeta for the flags, or nil when none were set.
func (m *metaFlags) meta() *jinko.ItemMeta {
	if m.name == "" && m.description == "" && m.folderID == "" && m.versionName == "" {
		return nil
	}
	return &jinko.ItemMeta{
		Name:        m.name,
		Description: m.description,
		FolderID:    m.folderID,
		VersionName: m.versionName,
	}
}

// printItemID reports a freshly created snapshot pair.
func printItemID(id jinko.ItemID) error {
	return printResult(id, func() {
		w := table()
		_, _ = w.Write([]byte("CORE ITEM ID\tSNAPSHOT ID\n"))
		_, _ = w.Write([]byte(id.CoreItemID + "\t" + id.SnapshotID + "\n"))
		_ = w.Flush()
	})
}
