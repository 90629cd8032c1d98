package adventure

// Word lists recognised by ParseAnswer, ParseDirection and IsExit.
// Entries are already normalized.
var (
	Affirmatives = []string{
		"10-4", "affirmative", "alright", "aye", "fuck yeah", "fuck yes",
		"hell yeah", "hell yes", "ok", "okay", "please", "positive", "sure",
		"y", "yay", "ye", "yeah", "yeah ok", "yeah sure", "yep", "yes",
		"yes please", "yup",
	}
	Negatives = []string{
		"fuck nah", "fuck no", "hell nah", "hell no", "n", "nah", "nay",
		"negative", "never", "no", "nope", "no please", "not ok", "not okay",
		"no way",
	}
	Unsuratives = []string{
		"dunno", "huh", "idk", "i dont know", "i dunno", "i guess", "maybe",
		"no clue", "no idea", "not sure", "que", "shrug", "unsure", "what",
	}

	Norths  = []string{"forward", "go forward", "go north", "n", "north", "northbound", "northward"}
	Easts   = []string{"e", "east", "eastbound", "eastward", "go east", "go right", "right"}
	Souths  = []string{"backward", "go backward", "go south", "s", "south", "southbound", "southward"}
	Wests   = []string{"go left", "go west", "left", "w", "west", "westbound", "westward"}
	Ups     = []string{"ascend", "climb", "climb up", "fly", "fly up", "go up", "rise", "u", "up"}
	Downs   = []string{"climb down", "d", "descend", "down", "fall", "glide", "go down"}
	Returns = []string{"b", "back", "fall back", "go back", "r", "retreat", "return", "run", "run away"}

	Exits = []string{"exit", "exit game", "quit", "quit game"}
)
