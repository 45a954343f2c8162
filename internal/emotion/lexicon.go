package emotion

import "feedsight/internal/domain"

type entry struct {
	valence float64
	label   domain.Label // empty for polarity-only words
}

// lexicon holds valence in [-4, 4] and, where the word signals one, an emotion label.
var lexicon = map[string]entry{
	// joy
	"love": {3.2, domain.Joy}, "loved": {2.9, domain.Joy}, "loving": {2.9, domain.Joy},
	"great": {3.1, domain.Joy}, "excellent": {2.7, domain.Joy}, "amazing": {2.8, domain.Joy},
	"happy": {2.7, domain.Joy}, "fantastic": {2.6, domain.Joy}, "wonderful": {2.7, domain.Joy},
	"awesome": {3.1, domain.Joy}, "good": {1.9, domain.Joy}, "perfect": {2.7, domain.Joy},
	"pleased": {1.9, domain.Joy}, "delighted": {2.9, domain.Joy}, "enjoy": {2.2, domain.Joy},
	"enjoyed": {2.3, domain.Joy}, "best": {3.2, domain.Joy}, "glad": {2.0, domain.Joy},
	"nice": {1.8, domain.Joy}, "helpful": {1.8, domain.Joy}, "recommend": {1.5, domain.Joy},
	"satisfied": {1.8, domain.Joy}, "thank": {1.5, domain.Joy}, "thanks": {1.9, domain.Joy},
	"beautiful": {2.9, domain.Joy}, "friendly": {2.2, domain.Joy}, "fun": {2.3, domain.Joy},
	"impressed": {2.1, domain.Joy}, "like": {1.5, domain.Joy}, "easy": {1.9, domain.Joy},
	"smooth": {1.2, domain.Joy}, "fast": {1.0, domain.Joy}, "reliable": {1.6, domain.Joy},

	// sadness
	"sad": {-2.1, domain.Sadness}, "disappointed": {-1.9, domain.Sadness},
	"disappointing": {-2.2, domain.Sadness}, "disappointment": {-2.3, domain.Sadness},
	"unhappy": {-1.8, domain.Sadness}, "miss": {-0.6, domain.Sadness}, "sorry": {-0.3, domain.Sadness},
	"regret": {-1.8, domain.Sadness}, "unfortunately": {-1.5, domain.Sadness}, "poor": {-2.1, domain.Sadness},
	"lacking": {-1.0, domain.Sadness}, "letdown": {-1.8, domain.Sadness}, "depressing": {-2.4, domain.Sadness},
	"lonely": {-1.9, domain.Sadness}, "heartbroken": {-3.0, domain.Sadness}, "upset": {-1.6, domain.Sadness},
	"lost": {-1.3, domain.Sadness}, "sadly": {-2.1, domain.Sadness},

	// anger
	"angry": {-2.3, domain.Anger}, "terrible": {-2.5, domain.Anger}, "awful": {-2.0, domain.Anger},
	"hate": {-2.7, domain.Anger}, "hated": {-3.2, domain.Anger}, "furious": {-2.7, domain.Anger},
	"horrible": {-2.5, domain.Anger}, "worst": {-3.1, domain.Anger}, "rude": {-2.0, domain.Anger},
	"ridiculous": {-1.5, domain.Anger}, "unacceptable": {-2.0, domain.Anger}, "annoying": {-1.7, domain.Anger},
	"annoyed": {-1.6, domain.Anger}, "frustrated": {-2.4, domain.Anger}, "frustrating": {-1.9, domain.Anger},
	"scam": {-2.5, domain.Anger}, "useless": {-1.8, domain.Anger}, "garbage": {-2.1, domain.Anger},
	"disgusting": {-2.9, domain.Anger}, "outraged": {-2.8, domain.Anger}, "pathetic": {-2.3, domain.Anger},

	// fear
	"worried": {-1.2, domain.Fear}, "afraid": {-2.0, domain.Fear}, "scared": {-1.9, domain.Fear},
	"concerned": {-1.3, domain.Fear}, "anxious": {-1.0, domain.Fear}, "nervous": {-1.2, domain.Fear},
	"unsafe": {-1.9, domain.Fear}, "insecure": {-1.8, domain.Fear}, "fear": {-2.2, domain.Fear},
	"panic": {-2.3, domain.Fear}, "worry": {-1.9, domain.Fear}, "uncertain": {-1.2, domain.Fear},
	"risky": {-0.8, domain.Fear}, "dangerous": {-2.1, domain.Fear}, "terrified": {-3.0, domain.Fear},

	// surprise
	"surprised": {0.9, domain.Surprise}, "unexpected": {0, domain.Surprise}, "shocked": {-1.3, domain.Surprise},
	"wow": {2.8, domain.Surprise}, "amazed": {2.2, domain.Surprise}, "suddenly": {0, domain.Surprise},
	"astonished": {1.6, domain.Surprise}, "unbelievable": {0.8, domain.Surprise}, "surprising": {1.1, domain.Surprise},
	"surprise": {1.1, domain.Surprise},

	// polarity only
	"slow": {-1.2, ""}, "bug": {-1.0, ""}, "bugs": {-1.2, ""}, "crash": {-1.7, ""},
	"crashes": {-1.7, ""}, "crashed": {-1.7, ""}, "expensive": {-0.9, ""}, "late": {-0.6, ""},
	"delayed": {-1.0, ""}, "error": {-1.4, ""}, "errors": {-1.4, ""}, "fail": {-2.5, ""},
	"failed": {-2.3, ""}, "fails": {-1.8, ""}, "broken": {-2.1, ""}, "bad": {-2.5, ""},
	"problem": {-1.7, ""}, "problems": {-1.7, ""}, "issue": {-0.9, ""}, "issues": {-0.9, ""},
	"okay": {0.9, ""}, "ok": {1.2, ""}, "fine": {0.8, ""}, "better": {1.9, ""},
	"improved": {1.6, ""}, "worse": {-2.1, ""}, "cheap": {-0.3, ""}, "refund": {-0.5, ""},
}

var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "none": {}, "nothing": {}, "nobody": {}, "neither": {},
	"nor": {}, "without": {}, "cannot": {}, "isn't": {}, "wasn't": {}, "aren't": {}, "weren't": {},
	"don't": {}, "doesn't": {}, "didn't": {}, "can't": {}, "couldn't": {}, "won't": {},
	"wouldn't": {}, "shouldn't": {}, "hardly": {},
}

// boosters scale the next lexicon word.
var boosters = map[string]float64{
	"very": 0.293, "really": 0.293, "extremely": 0.293, "so": 0.293, "incredibly": 0.293,
	"absolutely": 0.293, "totally": 0.293, "completely": 0.293, "super": 0.293, "highly": 0.293,
	"slightly": -0.293, "somewhat": -0.293, "barely": -0.293, "kinda": -0.293, "little": -0.293,
}
