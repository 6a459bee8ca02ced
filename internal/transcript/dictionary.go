package transcript

// phoneticDictionary maps common transcription artefacts to their intended
// words. Keys and values are lowercase. Replacements run as plain substring
// substitutions in sorted key order, so entries are written with explicit
// spacing wherever a bare sequence could hit the inside of a legitimate
// word. Values must never contain another entry's key; dictionary_test.go
// enforces that.
//
// Order dependence is real: when one key is a prefix of another (sorted
// order fires the shorter first), the longer entry never matches. "sru " is
// kept ahead of any "sru"-prefixed garble for exactly that reason.
var phoneticDictionary = map[string]string{
	// Greetings and agent intros.
	" ello there":   " hello there",
	" allo there":   " hello there",
	" ello this is": " hello this is",
	"dis is ":      "this is ",
	"diss is ":     "this is ",
	"dhis is ":     "this is ",
	"thys is ":     "this is ",
	"zis is ":      "this is ",
	"dees is ":     "this is ",
	"my nem is":    "my name is",
	"my naym is":   "my name is",
	"mah name is":  "my name is",
	"me name is":   "my name is",
	"my name iz":   "my name is",
	"my names is":  "my name is",
	"i yam ":       "i am ",
	"i em ":        "i am ",
	"i ham ":       "i am ",
	"how ya doin":  "how are you doing",
	"how you doin": "how are you doing",
	"how ar you":   "how are you",
	"how r you":    "how are you",
	"gud morning":  "good morning",
	"gud afternoon": "good afternoon",
	"gud evening":  "good evening",
	"goot morning": "good morning",
	"mornin ":      "morning ",
	"evenin ":      "evening ",
	"afta noon":    "afternoon",
	"hai there":    "hi there",
	"haloo ":       "hello ",
	"helo ":        "hello ",
	"hullo ":       "hello ",

	// Property vocabulary.
	"proprety":      "property",
	"propertee":     "property",
	"propperty":     "property",
	"proparty":      "property",
	"properti ":     "property ",
	"propety":       "property",
	"praperty":      "property",
	"houz ":         "house ",
	"houze ":        "house ",
	"howse ":        "house ",
	"hause ":        "house ",
	"huse ":         "house ",
	"hous ":         "house ",
	"aparment":      "apartment",
	"apartmen ":     "apartment ",
	"appartment":    "apartment",
	"apartament":    "apartment",
	"condoe ":       "condo ",
	"kondo ":        "condo ",
	"condominum":    "condominium",
	"reel estate":   "real estate",
	"reale state":   "real estate",
	"realestate":    "real estate",
	"rial estate":   "real estate",
	"real state":    "real estate",
	"realter ":      "realtor ",
	"reltor ":       "realtor ",
	"reelter ":      "realtor ",
	"morgage":       "mortgage",
	"morgadge":      "mortgage",
	"mortage":       "mortgage",
	"morage ":       "mortgage ",
	"forclosure":    "foreclosure",
	"for closure":   "foreclosure",
	"fore closure":  "foreclosure",
	"adress":        "address",
	"addres ":       "address ",
	"adres ":        "address ",
	"steet ":        "street ",
	"streat ":       "street ",
	"sreet ":        "street ",
	"avenu ":        "avenue ",
	"avinue ":       "avenue ",
	"bulevard":      "boulevard",
	"boulvard":      "boulevard",
	"nayborhood":    "neighborhood",
	"neiborhood":    "neighborhood",
	"neighborhod":   "neighborhood",
	"naybors":       "neighbors",
	"neibors":       "neighbors",
	"tennant":       "tenant",
	"tennent":       "tenant",
	"lanlord":       "landlord",
	"land lord":     "landlord",
	"ackreage":      "acreage",
	"acrage":        "acreage",
	"sqare feet":    "square feet",
	"sqaure feet":   "square feet",
	"squar feet":    "square feet",
	"square foots":  "square feet",
	"bedrums":       "bedrooms",
	"bedroomz":      "bedrooms",
	"bathrums":      "bathrooms",
	"garaje":        "garage",
	"garadge":       "garage",
	"basment":       "basement",
	"basemant":      "basement",
	"duplexx":       "duplex",
	"doo plex":      "duplex",
	"vacent ":       "vacant ",
	"vaccant":       "vacant",
	"vacint ":       "vacant ",
	"okupied":       "occupied",
	"ocupied":       "occupied",
	"occupide":      "occupied",
	"rentel ":       "rental ",
	"rentall ":      "rental ",

	// Buying, selling, offers.
	"sellin ":       "selling ",
	"sel it ":       "sell it ",
	"sellit ":       "sell it ",
	"seling ":       "selling ",
	"selll ":        "sell ",
	"buyin ":        "buying ",
	"bying ":        "buying ",
	"biying ":       "buying ",
	"byuer ":        "buyer ",
	"bier ":         "buyer ",
	"buyah ":        "buyer ",
	"buyerz":        "buyers",
	"offa ":         "offer ",
	"offah ":        "offer ",
	"ofer ":         "offer ",
	"offur ":        "offer ",
	"oferr ":        "offer ",
	"cash offa":     "cash offer",
	"kash ":         "cash ",
	"prise ":        "price ",
	"pryce ":        "price ",
	"prize for it":  "price for it",
	"prices is":     "price is",
	"markit ":       "market ",
	"marcket":       "market",
	"markett ":      "market ",
	"valyou ":       "value ",
	"valew ":        "value ",
	"vallue ":       "value ",
	"appresiate":    "appreciate",
	"appriciate":    "appreciate",
	"apreciate":     "appreciate",
	"appreshiate":   "appreciate",
	"intrested":     "interested",
	"intersted":     "interested",
	"interesed":     "interested",
	"interestd":     "interested",
	"innerested":    "interested",
	"intrest ":      "interest ",
	"closin ":       "closing ",
	"closeing":      "closing",
	"comission":     "commission",
	"commision":     "commission",
	"negoshiate":    "negotiate",
	"negociate":     "negotiate",
	"negotiat ":     "negotiate ",
	"contrack":      "contract",
	"contrac ":      "contract ",
	"purchse":       "purchase",
	"perchase":      "purchase",
	"purchace":      "purchase",
	"investur":      "investor",
	"invester":      "investor",
	"equitty":       "equity",
	"ekwity":        "equity",
	"equety":        "equity",
	"apprasal":      "appraisal",
	"appraisel":     "appraisal",
	"apraisal":      "appraisal",
	"inspecshun":    "inspection",
	"inspektion":    "inspection",
	"payed off":     "paid off",
	"pade off":      "paid off",
	"owin on it":    "owing on it",
	"owes on it":    "owe on it",

	// Objection handling vocabulary.
	"not intrested":   "not interested",
	"not intersted":   "not interested",
	"no intrested":    "not interested",
	"not right naw":   "not right now",
	"not rite now":    "not right now",
	"maybee ":         "maybe ",
	"maybi ":          "maybe ",
	"mebbe ":          "maybe ",
	"probly ":         "probably ",
	"prolly ":         "probably ",
	"probally ":       "probably ",
	"probibly ":       "probably ",
	"definately":      "definitely",
	"definitly":       "definitely",
	"definetly":       "definitely",
	"deffinately":     "definitely",
	"considor ":       "consider ",
	"considr ":        "consider ",
	"konsider ":       "consider ",
	"consida ":        "consider ",
	"thinkin ":        "thinking ",
	"tinking ":        "thinking ",
	"tink about":      "think about",
	"fink about":      "think about",
	"futcher ":        "future ",
	"fucher ":         "future ",
	"futur ":          "future ",
	"fyuture":         "future",
	"down da road":    "down the road",
	"down the rode":   "down the road",
	"sum day":         "someday",
	"sumday":          "someday",
	"sumtime":         "sometime",
	"some time soon":  "sometime soon",
	"circomstances":   "circumstances",
	"sircumstances":   "circumstances",
	"situashun":       "situation",
	"situasion":       "situation",
	"oppertunity":     "opportunity",
	"opertunity":      "opportunity",
	"opportunaty":     "opportunity",
	"flexable":        "flexible",
	"flexibel":        "flexible",
	"fleksible":       "flexible",
	"conveenient":     "convenient",
	"convienient":     "convenient",
	"conveniant":      "convenient",
	"wood you ":       "would you ",
	"wud you ":        "would you ",
	"woud you ":       "would you ",
	"whould you":      "would you",
	"wouldent":        "would not",
	"wouldnt ":        "would not ",
	"couldnt ":        "could not ",
	"shouldnt ":       "should not ",

	// Scheduling and callbacks.
	"call back":      "callback",
	"cal back":       "callback",
	"kall back":      "callback",
	"callbak":        "callback",
	"skedule":        "schedule",
	"shedule":        "schedule",
	"schedual":       "schedule",
	"scedule":        "schedule",
	"appointmant":    "appointment",
	"apointment":     "appointment",
	"appointmint":    "appointment",
	"tomorra":        "tomorrow",
	"tomorow":        "tomorrow",
	"tommorow":       "tomorrow",
	"tommorrow":      "tomorrow",
	"nex week":       "next week",
	"necks week":     "next week",
	"nekst week":     "next week",
	"nex month":      "next month",
	"dis afternoon":  "this afternoon",
	"dis evening":    "this evening",
	"dis week":       "this week",
	"dis month":      "this month",
	"later on today": "later today",
	"layta ":         "later ",
	"lata ":          "later ",
	"in da morning":  "in the morning",
	"weekand":        "weekend",
	"weeknd":         "weekend",
	"wekend":         "weekend",
	"minit ":         "minute ",
	"minet ":         "minute ",
	"minnit ":        "minute ",
	"secand ":        "second ",
	"secund ":        "second ",
	"a cupple":       "a couple",
	"cuple of":       "couple of",
	"cupple of":      "couple of",

	// Numbers and quantities.
	"noine ":       "nine ",
	"foive ":       "five ",
	"foor ":        "four ",
	"tree hundred": "three hundred",
	"tree thousand": "three thousand",
	"tousand":      "thousand",
	"tousend":      "thousand",
	"thousend":     "thousand",
	"hunnerd":      "hundred",
	"hunred":       "hundred",
	"hundert":      "hundred",
	"twenny ":      "twenty ",
	"twennie ":     "twenty ",
	"thurty ":      "thirty ",
	"thirdy ":      "thirty ",
	"fourty ":      "forty ",
	"fity ":        "fifty ",
	"fiddy ":       "fifty ",
	"sixdy ":       "sixty ",
	"sevendy ":     "seventy ",
	"eighdy ":      "eighty ",
	"ninedy ":      "ninety ",
	"milion":       "million",
	"millon":       "million",
	"percint":      "percent",
	"precent":      "percent",
	"per cent":     "percent",
	"dollers":      "dollars",
	"dollahs":      "dollars",
	"dolars":       "dollars",
	"doller ":      "dollar ",

	// Contractions and elisions.
	"gonna ":    "going to ",
	"gunna ":    "going to ",
	"gona ":     "going to ",
	"wanna ":    "want to ",
	"wana ":     "want to ",
	"wonna ":    "want to ",
	"gotta ":    "got to ",
	"godda ":    "got to ",
	"kinda ":    "kind of ",
	"sorta ":    "sort of ",
	"outta ":    "out of ",
	"lotta ":    "lot of ",
	"lemme ":    "let me ",
	"gimme ":    "give me ",
	"dunno ":    "do not know ",
	"donno ":    "do not know ",
	"cuz ":      "because ",
	"coz ":      "because ",
	"cos ":      "because ",
	" bout it":   " about it",
	" bout the":  " about the",
	" bout your": " about your",
	" bout that": " about that",
	"boutcha":   "about you",
	"whatcha":   "what are you",
	"gotcha":    "got you",
	"betcha":    "bet you",
	"lotsa ":    "lots of ",
	"onna ":     "on a ",
	"offa the":  "off of the",
	"shoulda ":  "should have ",
	"woulda ":   "would have ",
	"coulda ":   "could have ",
	"musta ":    "must have ",
	"aint ":     "is not ",
	"innit ":    "is it not ",
	"sposed to": "supposed to",
	" posed to ": " supposed to ",
	"spose ":    "suppose ",
	"use to ":   "used to ",
	"yall ":     "you all ",
	"ya know":   "you know",
	"y know":    "you know",
	"yup ":      "yes ",
	"yep ":      "yes ",
	"yeh ":      "yes ",
	"nah ":      "no ",
	"naw ":      "no ",

	// Dropped-g progressive forms.
	"callin ":      "calling ",
	"calln ":       "calling ",
	"talkin ":      "talking ",
	"lookin ":      "looking ",
	"askin ":       "asking ",
	"tellin ":      "telling ",
	"speakin ":     "speaking ",
	"hearin ":      "hearing ",
	"listnin ":     "listening ",
	"listenin ":    "listening ",
	"comin ":       "coming ",
	"goin ":        "going ",
	"doin ":        "doing ",
	"havin ":       "having ",
	"makin ":       "making ",
	"takin ":       "taking ",
	"givin ":       "giving ",
	"gettin ":      "getting ",
	"puttin ":      "putting ",
	"settin ":      "setting ",
	"sittin ":      "sitting ",
	"waitin ":      "waiting ",
	"workin ":      "working ",
	"livin ":       "living ",
	"movin ":       "moving ",
	"leavin ":      "leaving ",
	"stayin ":      "staying ",
	"payin ":       "paying ",
	"rentin ":      "renting ",
	"showin ":      "showing ",
	"holdin ":      "holding ",
	"keepin ":      "keeping ",
	"runnin ":      "running ",
	"startin ":     "starting ",
	"stoppin ":     "stopping ",
	"checkin ":     "checking ",
	"reachin ":     "reaching ",
	"tryin ":       "trying ",
	"wonderin ":    "wondering ",
	"plannin ":     "planning ",
	"offerin ":     "offering ",
	"listin ":      "listing ",
	"meetin ":      "meeting ",
	"somethin ":    "something ",
	"anythin ":     "anything ",
	"nothin ":      "nothing ",
	"everythin ":   "everything ",
	"fixin ":       "fixing ",
	"needin ":      "needing ",
	"ownin ":       "owning ",
	"knowin ":      "knowing ",
	"happenin ":    "happening ",
	"dependin ":    "depending ",
	"understandin ": "understanding ",

	// Hard-th and stopped consonants.
	"da house":     "the house",
	"da property":  "the property",
	"da market":    "the market",
	"da price":     "the price",
	"da area":      "the area",
	"da phone":     "the phone",
	"da money":     "the money",
	"da owner":     "the owner",
	"dat house":    "that house",
	"dat property": "that property",
	"dat price":    "that price",
	"dat area":     "that area",
	"dat one":      "that one",
	"dis one":      "this one",
	"dis house":    "this house",
	"dis property": "this property",
	"dis number":   "this number",
	"dese houses":  "these houses",
	"dese days":    "these days",
	"dose houses":  "those houses",
	"dose numbers": "those numbers",
	"dere is":      "there is",
	"dere are":     "there are",
	"dey are":      "they are",
	"dey want":     "they want",
	"dey said":     "they said",
	"wit you":      "with you",
	"wit your":     "with your",
	"wit us":       "with us",
	"wit dat":      "with that",
	"wit the":      "with the",
	"tanks for":    "thanks for",
	"tank you":     "thank you",
	"fank you":     "thank you",
	"fanks ":       "thanks ",
	"tru the":      "through the",
	"sru ":         "through ",
	"srue ":        "through ",
	"tink ":        "think ",
	"tought ":      "thought ",
	"taught about": "thought about",
	"anudder":      "another",
	"anotha ":      "another ",
	"anuther":      "another",
	"bruddah":      "brother",
	"oder one":     "other one",
	"udder one":    "other one",
	"da other":     "the other",
	"somefin":      "something",
	"sumfin":       "something",
	"somting":      "something",
	"nuttin ":      "nothing ",
	"nuffin ":      "nothing ",
	"birfday":      "birthday",
	"mont ":        "month ",
	"munt ":        "month ",
	"monf ":        "month ",
	"mouth to mouth": "month to month",

	// Doubled and dropped letters.
	"aboutt ":    "about ",
	"abou ":      "about ",
	"abot ":      "about ",
	"abut the":   "about the",
	"verry ":     "very ",
	"vary good":  "very good",
	"goood ":     "good ",
	"gud ":       "good ",
	"wel ":       "well ",
	"welll ":     "well ",
	"realy ":     "really ",
	"reall ":     "really ",
	"rilly ":     "really ",
	"rite now":   "right now",
	"rigth ":     "right ",
	"wich ":      "which ",
	"whitch ":    "which ",
	"wen ":       "when ",
	"wheneva ":   "whenever ",
	"whateva ":   "whatever ",
	"watever":    "whatever",
	"becuase":    "because",
	"beacuse":    "because",
	"becase ":    "because ",
	"becos ":     "because ",
	"bcause":     "because",
	"littel ":    "little ",
	"litle ":     "little ",
	"peopel":     "people",
	"peeple":     "people",
	"peple ":     "people ",
	"alot of":    "a lot of",
	"alright":    "all right",
	"allright":   "all right",
	"untill ":    "until ",
	"unitl ":     "until ",
	"till then":  "until then",
	"diffrent":   "different",
	"diferent":   "different",
	"differant":  "different",
	"questun":    "question",
	"questin ":   "question ",
	"queston":    "question",
	"quession":   "question",
	"remeber":    "remember",
	"rember ":    "remember ",
	"togther":    "together",
	"togethor":   "together",
	"familly":    "family",
	"famly ":     "family ",
	"fambly":     "family",
	"bisness":    "business",
	"bizness":    "business",
	"busness":    "business",
	"busines ":   "business ",
	"compny":     "company",
	"cumpany":    "company",
	"companee":   "company",
	"informaton": "information",
	"infomation": "information",
	"imformation": "information",
	"recieve":    "receive",
	"receeve":    "receive",
	"beleive":    "believe",
	"belive ":    "believe ",
	"freind":     "friend",
	"firend":     "friend",
	"husban ":    "husband ",
	"huband ":    "husband ",
	"wifes ":     "wife's ",
	"daugther":   "daughter",
	"dauter":     "daughter",

	// Telephone vocabulary.
	"fone ":        "phone ",
	"foan ":        "phone ",
	"phon ":        "phone ",
	"telefone":     "telephone",
	"telephon ":    "telephone ",
	"numba ":       "number ",
	"numbah ":      "number ",
	"numbr ":       "number ",
	"nummer ":      "number ",
	"voicemale":    "voicemail",
	"voice male":   "voicemail",
	"anserin machine": "answering machine",
	"ansering":     "answering",
	"mesage":       "message",
	"massage for you": "message for you",
	"messege":      "message",
	"messidge":     "message",
	"contakt":      "contact",
	"reech you":    "reach you",
	"reech out":    "reach out",
	"speek to":     "speak to",
	"speek with":   "speak with",
	"tawk to":      "talk to",
	"tawk about":   "talk about",
	"lissen ":      "listen ",
	"lisen ":       "listen ",

	// Courtesy and filler cleanup.
	"excuse me me": "excuse me",
	"scuse me":     "excuse me",
	"skuse me":     "excuse me",
	"pardn ":       "pardon ",
	"no problemo":  "no problem",
	"no prollem":   "no problem",
	"apreciate it":  "appreciate it",
	" preciate it":  " appreciate it",
	"yes mam":      "yes ma'am",
	"yes maam":     "yes ma'am",
	"no mam":       "no ma'am",
	"no maam":      "no ma'am",
	"yessir":       "yes sir",
	"yes ser":      "yes sir",
	"no ser":       "no sir",
	"mister ":      "mr ",
	"missus ":      "mrs ",
	"sістра":       "sister",
}
