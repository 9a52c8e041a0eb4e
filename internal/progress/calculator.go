// Package progress computes derived course progress from the catalog and a user's completed videos.
//
// Only video ids present in the current catalog count towards progress; ids of videos that were
// removed after being completed are ignored. Percentages are integers rounded half up, except that
// a percentage only reaches 100 when every video is completed.
package progress

import "github.com/patientportal/backend/internal/models"

// Compute returns the per-module progress, the video-weighted program progress and the program status.
// Missing modules, videos or completion entries count as empty.
func Compute(program *models.Program, completion models.ProgramCompletion) models.ProgramProgress {
	result := models.ProgramProgress{
		ModuleProgress: make(map[string]int),
		ProgramStatus:  models.ProgressStatusActive,
	}
	if program == nil {
		return result
	}

	var totalVideos, totalCompleted int
	for i := range program.Modules {
		module := &program.Modules[i]
		total, completed := countModule(module, completion[module.ID])

		result.ModuleProgress[module.ID] = Percent(completed, total)
		totalVideos += total
		totalCompleted += completed
	}

	result.ProgramProgress = Percent(totalCompleted, totalVideos)
	result.ProgramStatus = Status(result.ProgramProgress)

	return result
}

// countModule returns the number of videos in the module and how many distinct ones were completed
func countModule(module *models.Module, completedIDs []string) (total, completed int) {
	inCatalog := make(map[string]struct{}, len(module.Videos))
	for _, v := range module.Videos {
		inCatalog[v.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(completedIDs))
	for _, id := range completedIDs {
		if _, ok := inCatalog[id]; !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
	}

	return len(inCatalog), len(seen)
}

// Percent returns round(100 * completed / total) with halves rounded up, or 0 when total is 0.
// 100 is reserved for completed == total, so an unfinished program never reads as completed.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return min((200*completed+total)/(2*total), 99)
}

// Status maps a program percentage to its status
func Status(programProgress int) models.ProgressStatus {
	if programProgress == 100 {
		return models.ProgressStatusCompleted
	}
	return models.ProgressStatusActive
}
