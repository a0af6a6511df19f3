// /internal/discord/commands.go
package discord

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"nasty-client/internal/command"

	"github.com/bwmarrin/discordgo"
)

// registerCommands syncs slash commands for a guild with Discord: deletes
// obsolete ones, creates or updates commands whose definition has changed
// since the last sync (tracked in a local hash cache, so restarts don't
// re-push unchanged definitions).
func (b *Bot) registerCommands(guildID string) error {
	appID := b.dg.State.User.ID
	if appID == "" {
		user, err := b.dg.User("@me")
		if err != nil {
			return err
		}
		appID = user.ID
	}

	remote, _ := b.dg.ApplicationCommands(appID, guildID)
	local := buildCommandDefinitions()
	hashes := loadCommandHashes(guildID)

	localNames := make(map[string]string, len(local))
	for _, def := range local {
		localNames[def.Name] = hashCommand(def)
	}

	// Delete obsolete
	for _, old := range remote {
		if _, ok := localNames[old.Name]; !ok {
			log.Printf("[INFO] [%s] Deleting obsolete command: %s", guildID, old.Name)
			if err := b.dg.ApplicationCommandDelete(appID, guildID, old.ID); err != nil {
				log.Printf("[ERR] [%s] Failed to delete %s: %v", guildID, old.Name, err)
			}
			delete(hashes, old.Name)
		}
	}

	// Create or update changed commands
	changed := 0
	for _, def := range local {
		newHash := localNames[def.Name]
		if hashes[def.Name] == newHash {
			continue
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			log.Printf("[ERR] [%s] Failed to register %s: %v", guildID, def.Name, err)
			continue
		}
		hashes[def.Name] = newHash
		changed++
	}
	if changed > 0 {
		log.Printf("[INFO] [%s] Registered %d changed commands", guildID, changed)
	}

	saveCommandHashes(guildID, hashes)
	return nil
}

func buildCommandDefinitions() []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, cmd := range command.AllCommands() {
		if sp, ok := cmd.(command.SlashProvider); ok {
			if def := sp.SlashDefinition(); def != nil {
				defs = append(defs, def)
			}
		}
	}
	return defs
}

// hashCommand creates a deterministic hash for an ApplicationCommand,
// skipping runtime-only fields like IDs and versions.
func hashCommand(cmd *discordgo.ApplicationCommand) string {
	obj := map[string]interface{}{
		"name":        cmd.Name,
		"description": cmd.Description,
		"type":        cmd.Type,
	}
	data, _ := json.Marshal(obj)
	sum := sha1.Sum(data)
	return fmt.Sprintf("%x", sum)
}

func commandCachePath(guildID string) string {
	return filepath.Join("data", "commands", guildID+".json")
}

func loadCommandHashes(guildID string) map[string]string {
	data := make(map[string]string)
	file, err := os.ReadFile(commandCachePath(guildID))
	if err == nil {
		_ = json.Unmarshal(file, &data)
	}
	return data
}

func saveCommandHashes(guildID string, hashes map[string]string) {
	path := commandCachePath(guildID)
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	data, _ := json.MarshalIndent(hashes, "", "  ")
	_ = os.WriteFile(path, data, 0644)
}
