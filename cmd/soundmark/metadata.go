package main

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/soundmark/soundmark/internal/catalogue"
)

var seasonEpisodeRe = regexp.MustCompile(`(?i)s(\d+)e(\d+)`)

// parseFilename derives catalogue metadata from a file's path, following
// the season/episode-regex and parent-folder-as-show-name heuristic the
// original ingestion script used: a file living two directories under a
// "tv_shows" folder is treated as an episode, everything else as a movie.
func parseFilename(path string) catalogue.WorkMeta {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	parent := filepath.Base(filepath.Dir(path))
	grandparent := filepath.Base(filepath.Dir(filepath.Dir(path)))

	if grandparent == "tv_shows" {
		title := base
		var season, episode *int
		if m := seasonEpisodeRe.FindStringSubmatch(base); m != nil {
			s, _ := strconv.Atoi(m[1])
			e, _ := strconv.Atoi(m[2])
			season, episode = &s, &e
			title = strings.Trim(seasonEpisodeRe.ReplaceAllString(base, ""), "_- ")
		}
		if len(title) < 3 {
			title = titleCase(parent)
		}
		return catalogue.WorkMeta{
			Title:      title,
			Kind:       catalogue.KindEpisode,
			SourcePath: path,
			Season:     season,
			Episode:    episode,
		}
	}

	return catalogue.WorkMeta{
		Title:      titleCase(base),
		Kind:       catalogue.KindMovie,
		SourcePath: path,
	}
}

func titleCase(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
