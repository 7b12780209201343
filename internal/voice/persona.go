package voice

import "strings"

// VoiceConfig describes one of the eight fixed synthetic voices.
type VoiceConfig struct {
	ID          string
	Name        string
	Description string
	Gender      string
	Personality string
}

var voiceConfigs = map[string]VoiceConfig{
	"narrator": {
		ID:          "JBFqnCBsd6RMkjVDRZzb",
		Name:        "George",
		Description: "Professional, clear narrator voice",
		Gender:      "male",
		Personality: "authoritative",
	},
	"storyteller": {
		ID:          "TxGEqnHWrfWFTfGW9XjX",
		Name:        "Josh",
		Description: "Warm, engaging storyteller",
		Gender:      "male",
		Personality: "warm",
	},
	"wise": {
		ID:          "CYw3kZ02Hs0563khs1Fj",
		Name:        "Dave",
		Description: "Wise, thoughtful voice",
		Gender:      "male",
		Personality: "wise",
	},
	"conversational": {
		ID:          "pNInz6obpgDQGcFmaJgB",
		Name:        "Adam",
		Description: "Natural, conversational voice",
		Gender:      "male",
		Personality: "friendly",
	},
	"elegantFemale": {
		ID:          "EXAVITQu4vr4xnSDxMaL",
		Name:        "Bella",
		Description: "Elegant, sophisticated female voice",
		Gender:      "female",
		Personality: "elegant",
	},
	"warmFemale": {
		ID:          "MF3mGyEYCl7XYWbV9V6O",
		Name:        "Elli",
		Description: "Warm, nurturing female voice",
		Gender:      "female",
		Personality: "nurturing",
	},
	"intellectualFemale": {
		ID:          "ThT5KcBeYPX3keUQqHPh",
		Name:        "Dorothy",
		Description: "Intellectual, clear female voice",
		Gender:      "female",
		Personality: "intellectual",
	},
	"youthfulFemale": {
		ID:          "XrExE9yKIg1WjnnlVkGX",
		Name:        "Matilda",
		Description: "Youthful, energetic female voice",
		Gender:      "female",
		Personality: "youthful",
	},
}

var (
	maleVoiceOrder   = []string{"narrator", "storyteller", "wise", "conversational"}
	femaleVoiceOrder = []string{"elegantFemale", "warmFemale", "intellectualFemale", "youthfulFemale"}
)

const defaultVoiceKey = "conversational"

var femaleAuthors = []string{
	"jane austen", "charlotte brontë", "emily brontë", "virginia woolf",
	"george eliot", "edith wharton", "willa cather", "louisa may alcott",
	"agatha christie", "harper lee", "toni morrison", "maya angelou",
	"margaret atwood", "j.k. rowling", "gillian flynn", "donna tartt",
	"zadie smith", "chimamanda ngozi adichie", "octavia butler",
	"ursula k. le guin", "sylvia plath", "flannery o'connor",
	"zora neale hurston", "alice walker", "simone de beauvoir", "ayn rand",
	"pearl s. buck", "gertrude stein", "anne rice", "joyce carol oates",
	"alice munro", "doris lessing", "nadine gordimer",
}

var maleAuthors = []string{
	"william shakespeare", "charles dickens", "mark twain",
	"ernest hemingway", "f. scott fitzgerald", "george orwell",
	"j.d. salinger", "john steinbeck", "william faulkner",
	"herman melville", "nathaniel hawthorne", "edgar allan poe",
	"oscar wilde", "james joyce", "franz kafka", "leo tolstoy",
	"fyodor dostoevsky", "gabriel garcía márquez", "jorge luis borges",
	"milan kundera", "isaac asimov", "ray bradbury", "arthur c. clarke",
	"stephen king", "dan brown", "john grisham", "michael crichton",
	"tom clancy", "jack kerouac", "allen ginsberg", "kurt vonnegut",
	"joseph heller", "norman mailer", "philip roth", "saul bellow",
}

// First-name fallback for authors on neither list.
var femaleNamePatterns = []string{
	"jane", "mary", "elizabeth", "emma", "charlotte", "emily", "anne",
	"margaret", "sarah", "lisa", "jennifer", "jessica", "ashley",
	"michelle", "kimberly", "amy", "donna", "carol", "susan", "helen",
	"patricia", "linda", "barbara", "maria", "nancy", "dorothy",
	"sandra", "betty", "ruth", "sharon", "diana",
}

// SelectVoiceForBook deterministically maps a book's author and id to one of
// the eight fixed voice ids: the author picks a gender bucket, a stable hash
// of the book id picks one of four variants inside it. The selection is made
// once per session and held fixed for its duration. Absent an author or book
// id it returns a fixed default.
func SelectVoiceForBook(author, bookID string) string {
	if author == "" || bookID == "" {
		return voiceConfigs[defaultVoiceKey].ID
	}

	lower := strings.ToLower(author)
	female := false
	switch {
	case containsAny(lower, femaleAuthors):
		female = true
	case containsAny(lower, maleAuthors):
	default:
		female = containsAny(lower, femaleNamePatterns)
	}

	variation := bookIDHash(bookID) % len(maleVoiceOrder)
	order := maleVoiceOrder
	if female {
		order = femaleVoiceOrder
	}
	return voiceConfigs[order[variation]].ID
}

// VoiceInfo returns the config behind a voice id, falling back to the
// default voice for unknown ids.
func VoiceInfo(voiceID string) VoiceConfig {
	for _, cfg := range voiceConfigs {
		if cfg.ID == voiceID {
			return cfg
		}
	}
	return voiceConfigs[defaultVoiceKey]
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func bookIDHash(id string) int {
	sum := 0
	for _, r := range id {
		sum += int(r)
	}
	if sum < 0 {
		sum = -sum
	}
	return sum
}
