// internal/game/wordguess/words.go
package wordguess

// answers are the words the daily puzzle can pick.
var answers = []string{
	"about", "above", "actor", "acute", "admit", "adopt", "adult", "after", "again", "agent",
	"agree", "ahead", "alarm", "album", "alert", "alike", "alive", "allow", "alone", "along",
	"alter", "amber", "among", "angel", "anger", "angle", "angry", "apart", "apple", "apply",
	"arena", "argue", "arise", "armor", "aside", "asset", "audio", "avoid", "award", "aware",
	"badge", "baker", "basic", "beach", "beard", "beast", "begin", "being", "below", "bench",
	"berry", "birth", "black", "blade", "blame", "blank", "blast", "blend", "bless", "blind",
	"block", "blood", "bloom", "board", "boast", "bonus", "boost", "booth", "brain", "brake",
	"brand", "brave", "bread", "break", "brick", "bride", "brief", "bring", "broad", "brown",
	"brush", "build", "built", "bunch", "burst", "buyer", "cabin", "cable", "camel", "candy",
	"carry", "catch", "cause", "chain", "chair", "chalk", "charm", "chart", "chase", "cheap",
	"check", "cheek", "chess", "chest", "chief", "child", "chill", "choir", "civil", "claim",
	"class", "clean", "clear", "clerk", "click", "cliff", "climb", "clock", "close", "cloud",
	"coach", "coast", "color", "coral", "couch", "count", "court", "cover", "craft", "crane",
	"crash", "cream", "crime", "crisp", "cross", "crowd", "crown", "cruel", "crush", "curve",
	"cycle", "daily", "dance", "delay", "depth", "diary", "dough", "draft", "drain", "drama",
	"dream", "dress", "drift", "drink", "drive", "eager", "eagle", "early", "earth", "elbow",
	"elder", "empty", "enemy", "enjoy", "enter", "equal", "error", "event", "exact", "exist",
	"extra", "faith", "false", "fancy", "feast", "fence", "fever", "field", "fight", "final",
	"flame", "flash", "fleet", "floor", "flour", "fluid", "focus", "force", "forge", "forty",
	"found", "frame", "fresh", "front", "frost", "fruit", "giant", "glass", "globe", "glory",
	"grace", "grade", "grain", "grand", "grape", "grass", "great", "green", "greet", "grief",
	"group", "guard", "guess", "guest", "guide", "habit", "happy", "heart", "heavy", "hobby",
	"honey", "horse", "hotel", "house", "human", "humor", "ideal", "image", "index", "inner",
	"input", "issue", "ivory", "jelly", "jewel", "joint", "judge", "juice", "knife", "label",
	"large", "laser", "later", "laugh", "layer", "lemon", "level", "light", "limit", "linen",
	"logic", "loose", "lucky", "lunar", "lunch", "magic", "major", "maple", "march", "match",
	"mayor", "medal", "metal", "minor", "model", "money", "month", "moral", "motor", "mount",
	"mouse", "mouth", "movie", "music", "nerve", "never", "night", "noble", "noise", "north",
	"novel", "nurse", "ocean", "offer", "olive", "onion", "opera", "orbit", "order", "other",
	"outer", "owner", "paint", "panel", "paper", "party", "pasta", "patch", "peace", "pearl",
	"pedal", "phone", "photo", "piano", "piece", "pilot", "pitch", "pizza", "place", "plain",
	"plane", "plant", "plate", "plaza", "point", "polar", "pound", "power", "press", "price",
	"pride", "prime", "print", "prize", "proof", "proud", "pulse", "punch", "queen", "quick",
	"quiet", "quote", "radio", "raise", "range", "rapid", "raven", "reach", "ready", "relax",
	"reply", "ridge", "rifle", "right", "river", "roast", "robin", "robot", "rocky", "round",
	"route", "royal", "rural", "salad", "sauce", "scale", "scene", "scout", "seven", "shade",
	"shake", "shape", "share", "shark", "sharp", "sheep", "shelf", "shell", "shine", "shirt",
	"shock", "shore", "short", "shout", "sight", "skill", "skirt", "slice", "slide", "smart",
	"smile", "smoke", "snack", "snake", "solid", "sound", "south", "space", "spare", "spark",
	"speak", "speed", "spell", "spend", "spice", "spine", "spoon", "sport", "squad", "stack",
	"staff", "stage", "stair", "stamp", "stand", "steam", "steel", "stone", "storm", "story",
	"stove", "sugar", "sunny", "sweet", "swing", "sword", "table", "taste", "teach", "thumb",
	"tiger", "title", "toast", "topic", "torch", "total", "tower", "track", "trade", "trail",
	"train", "treat", "trend", "trial", "tribe", "trick", "truck", "trust", "truth", "tulip",
	"uncle", "union", "unity", "upper", "urban", "usual", "valid", "value", "video", "visit",
	"vital", "vocal", "voice", "waste", "watch", "water", "whale", "wheat", "wheel", "white",
	"whole", "woman", "world", "worry", "write", "young", "youth", "zebra",
}

// extraWords are accepted as guesses but never chosen as the answer.
var extraWords = []string{
	"aback", "abbey", "abide", "abyss", "acorn", "adore", "aisle", "algae", "alley", "aloft",
	"amaze", "ample", "amuse", "ankle", "annex", "apron", "arbor", "aroma", "arrow", "ashen",
	"attic", "avian", "awake", "axiom", "bacon", "bagel", "banjo", "barge", "basin", "baton",
	"bayou", "beady", "belly", "bingo", "bison", "blaze", "bliss", "bluff", "blurt", "boney",
	"booty", "bossy", "bough", "brawl", "briar", "brine", "brisk", "broil", "brook", "broth",
	"bugle", "bulky", "burly", "cacao", "cadet", "cairn", "canal", "cargo", "carol", "cedar",
	"cello", "chant", "chasm", "chime", "chirp", "cider", "cinch", "civic", "clamp", "clasp",
	"cleat", "cloak", "clove", "cocoa", "comet", "coupe", "cower", "crate", "crave", "creek",
	"crest", "crumb", "crypt", "cubic", "cumin", "daisy", "dandy", "decoy", "delta", "denim",
	"dingo", "ditch", "diver", "dizzy", "dodge", "dowel", "drawl", "dunce", "dusky", "dwarf",
	"easel", "eerie", "elope", "ember", "epoch", "ethos", "evoke", "fable", "fairy", "feral",
	"ferry", "fiber", "fjord", "flair", "flock", "flora", "fluff", "folly", "forte", "foyer",
	"frond", "fudge", "fungi", "gauze", "gecko", "geese", "gland", "glaze", "gloom", "gnome",
	"goose", "gourd", "gravy", "gusto", "haiku", "hazel", "heron", "hippo", "hoist", "holly",
	"hyena", "igloo", "inlet", "irony", "jazzy", "jolly", "kayak", "kebab", "knack", "koala",
	"ladle", "lapel", "latch", "leafy", "ledge", "lilac", "llama", "lodge", "lotus", "lyric",
	"mango", "manor", "marsh", "medic", "melon", "mirth", "mocha", "molar", "moose", "mossy",
	"mural", "nacho", "nanny", "nifty", "nudge", "oasis", "otter", "ounce", "oxide", "paddy",
	"pansy", "papal", "parka", "pecan", "perch", "petal", "plume", "plush", "poppy", "prism",
	"prune", "quail", "quilt", "quirk", "radar", "rhino", "rivet", "ruddy", "rumba", "sable",
	"satin", "sauna", "savor", "scarf", "scone", "shrub", "siren", "skunk", "sloth", "snowy",
	"sonar", "spore", "squid", "stork", "swamp", "syrup", "tabby", "talon", "tango", "tapir",
	"tempo", "thorn", "tonic", "trout", "tunic", "twirl", "udder", "umbra", "usher", "vapor",
	"vigor", "viola", "vixen", "waltz", "wharf", "whisk", "widow", "wrath", "yacht", "yodel",
	"zesty",
}
