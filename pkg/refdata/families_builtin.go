package refdata

// builtinFamilies is the hardcoded drug-family cluster list spec.md §4.1
// calls "first phase": used whenever the resources directory has no
// drug_families.json (spec.md §9 Open Question, resolved in DESIGN.md —
// the bundled-file option is now phase one, this list is the fallback).
// Clusters are deliberately loose: is_same_family only needs a substring
// match in both directions against some member, so entries lean toward
// over-inclusion (spec.md §4.1 "false positives are preferred to false
// negatives for the safety kinds").
var builtinFamilies = [][]string{
	{"ibuprofen", "naproxen", "diclofenac", "celecoxib", "meloxicam", "nsaid"},
	{"lisinopril", "enalapril", "ramipril", "captopril", "benazepril", "ace inhibitor"},
	{"losartan", "valsartan", "irbesartan", "olmesartan", "arb"},
	{"atorvastatin", "simvastatin", "rosuvastatin", "pravastatin", "lovastatin", "statin"},
	{"metoprolol", "atenolol", "propranolol", "carvedilol", "bisoprolol", "beta blocker"},
	{"amlodipine", "nifedipine", "diltiazem", "verapamil", "calcium channel blocker"},
	{"warfarin", "apixaban", "rivaroxaban", "dabigatran", "anticoagulant"},
	{"metformin", "glipizide", "glyburide", "sitagliptin", "biguanide"},
	{"sertraline", "fluoxetine", "citalopram", "escitalopram", "paroxetine", "ssri"},
	{"penicillin", "amoxicillin", "ampicillin", "piperacillin"},
	{"cephalexin", "cefuroxime", "ceftriaxone", "cephalosporin"},
	{"morphine", "oxycodone", "hydrocodone", "hydromorphone", "fentanyl", "opioid"},
}
