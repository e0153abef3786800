package mcpserver

// FolderLayoutContract describes the canonical parcel folder layout
// that LLM consumers should assume when working with parcel documents.
const FolderLayoutContract = `# Parcel Folder Layout

Every parcel record that has been provisioned on disk owns one folder
under the parcels root, with a fixed set of category subfolders.

## Structure

` + "```" + `
<parcels root>/
  <sanitized APN>/
    Maps/
    Vesting Deed/
    Easements/
    Chain/
    Taxes/
    Miscellaneous/
` + "```" + `

## Rules

1. **Folder name.** The folder is named after the parcel's APN with
   every character outside ` + "`" + `A-Z a-z 0-9 - _` + "`" + ` replaced by ` + "`" + `_` + "`" + `.
   When the APN sanitizes to nothing, the record id is used instead.
2. **Categories are fixed.** Documents live directly inside exactly one
   of the six category folders; there are no nested subfolders.
3. **Tax cards** placed by a batch run are named
   ` + "`" + `TaxCard_<sanitized APN>.pdf` + "`" + ` and stored under ` + "`" + `Taxes/` + "`" + `.
4. **Deleting a record never deletes its folder.** Documents survive
   catalog mutations; only an operator removes them.
5. **Dotfiles are ignored.** File listings skip hidden files and
   anything that is not a regular file.
`
