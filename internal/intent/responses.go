package intent

const greetingText = `Hello! 👋 Welcome to **LIFEXIA**, your medication information assistant.

Here is what I can do:
- 💊 **Drug information**: ask about any medicine by name
- 📋 **Dosage guidance** for adults, children and the elderly
- ⚠️ **Side effects and interactions**
- 🏥 **Nearby hospitals**: ask "find hospital near me" or share your location
- 🚨 **Emergency drugs**: type "emergency drugs list"
- 🪪 **Ayushman card hospitals**: type "ayushman"

**Try:** *"Tell me about Paracetamol"* or *"Side effects of Aspirin"*`

const emergencyContactsText = `## 🚨 Emergency Contacts

📞 **108**: Ambulance (India)
📞 **112**: General emergency
📞 **102**: Maternity emergency

🏥 **Emergency hospitals:**
- Civil Hospital: +91-79-22683721
- SAL Hospital: +91-79-40200200
- Star Hospital: +91-79-27560456

Stay calm and call emergency services right away.`

const schemeText = `## 🏥 Ayushman Bharat (AB-PMJAY) Hospitals

1. Civil Hospital: all specialties, free of charge
2. SAL Hospital: cardiac, neuro, ortho
3. Star Hospital: multi-specialty
4. Zydus Hospital: transplant, oncology
5. Apollo Hospital: all specialties
6. KD Hospital: multi-specialty

Treatment at these hospitals is **cashless** under AB-PMJAY.

**Bring with you:**
- Ayushman Bharat card
- Aadhaar card
- A valid photo ID`

const facilityText = `## 🏥 Finding Nearby Hospitals

1. Open the **Health Grid** map from the top bar
2. Allow location access when asked
3. Browse hospitals, pharmacies and clinics around you

On WhatsApp you can simply share your location 📍.

**In an emergency call 108 immediately.**

The map shows Ayushman card acceptance, 24/7 pharmacies, distance and directions.`
